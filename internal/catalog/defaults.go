package catalog

// Built-in catalog. An override file (config catalog.path) replaces all of
// this; the built-ins cover standard IT project documentation requirements.

var builtinProjectTypes = []ProjectType{
	{Code: "BI", Name: "Бизнес-аналитика"},
	{Code: "DWH", Name: "Хранилище данных"},
	{Code: "RPA", Name: "Роботизация процессов"},
	{Code: "MDM", Name: "Управление мастер-данными"},
}

var builtinDefinitions = []Definition{
	// Общие требования
	{ID: "general.passport", Category: CategoryGeneral, Name: "Паспорт проекта",
		SearchHints: []string{"паспорт проекта", "карточка проекта"}},
	{ID: "general.solution-description", Category: CategoryGeneral,
		Name: "Полное описание решения/системы (предназначение, цели, задачи)",
		SearchHints: []string{"описание системы", "цели", "задачи", "предназначение"}},
	{ID: "general.integration-diagram", Category: CategoryGeneral, Name: "Схема взаимодействия систем",
		SearchHints: []string{"схема взаимодействия", "интеграция"}},
	{ID: "general.raci", Category: CategoryGeneral, Name: "Матрица ответственности (RACI)",
		SearchHints: []string{"RACI", "матрица ответственности"}},
	{ID: "general.stakeholders", Category: CategoryGeneral, Name: "Перечень заинтересованных сторон",
		SearchHints: []string{"заинтересованные стороны", "стейкхолдеры"}},

	// Техническая документация
	{ID: "technical.architecture", Category: CategoryTechnical, Name: "Архитектурная схема решения",
		SearchHints: []string{"архитектура", "архитектурная схема"}},
	{ID: "technical.infrastructure", Category: CategoryTechnical, Name: "Описание инфраструктурных компонентов",
		SearchHints: []string{"инфраструктура", "серверы", "компоненты"}},
	{ID: "technical.config-files", Category: CategoryTechnical, Name: "Конфигурационные файлы (с примерами заполнения)",
		SearchHints: []string{"конфигурация", "config", "настройки"}},
	{ID: "technical.credentials", Category: CategoryTechnical, Name: "Логины/пароли/ключи доступа",
		SearchHints: []string{"учетные данные", "доступы", "ключи"}},
	{ID: "technical.datasource-params", Category: CategoryTechnical, Name: "Параметры подключения к источникам данных",
		SearchHints: []string{"строка подключения", "источники данных"}},
	{ID: "technical.software-versions", Category: CategoryTechnical, Name: "Версии ПО",
		SearchHints: []string{"версия", "версии ПО"}},
	{ID: "technical.dependencies", Category: CategoryTechnical, Name: "Список используемых библиотек/зависимостей",
		SearchHints: []string{"библиотеки", "зависимости"}},
	{ID: "technical.deployment", Category: CategoryTechnical, Name: "Инструкция по развертыванию решения",
		SearchHints: []string{"развертывание", "установка", "deployment"}},

	// Операционные процедуры
	{ID: "operations.manual", Category: CategoryOperations, Name: "Инструкция по эксплуатации",
		SearchHints: []string{"эксплуатация", "инструкция"}},
	{ID: "operations.recovery", Category: CategoryOperations, Name: "Процедура восстановления после сбоя",
		SearchHints: []string{"восстановление", "сбой", "аварийный"}},
	{ID: "operations.maintenance", Category: CategoryOperations, Name: "План обслуживания",
		SearchHints: []string{"обслуживание", "регламент"}},
	{ID: "operations.incidents", Category: CategoryOperations, Name: "Алгоритм действий при инцидентах",
		SearchHints: []string{"инцидент", "эскалация"}},
	{ID: "operations.updates", Category: CategoryOperations, Name: "Порядок внедрения обновлений",
		SearchHints: []string{"обновление", "релиз"}},

	// Тестирование и качество
	{ID: "testing.test-cases", Category: CategoryTesting, Name: "Тест-кейсы",
		SearchHints: []string{"тест-кейс", "тестовый сценарий"}},
	{ID: "testing.results", Category: CategoryTesting, Name: "Результаты тестирования",
		SearchHints: []string{"результаты тестирования", "протокол испытаний"}},
	{ID: "testing.data-quality", Category: CategoryTesting, Name: "Критерии качества данных",
		SearchHints: []string{"качество данных"}},
	{ID: "testing.performance", Category: CategoryTesting, Name: "Метрики производительности",
		SearchHints: []string{"производительность", "нагрузка"}},
	{ID: "testing.monitoring", Category: CategoryTesting, Name: "План мониторинга",
		SearchHints: []string{"мониторинг", "алерты"}},

	// Управление изменениями
	{ID: "changes.changelog", Category: CategoryChanges, Name: "Журнал изменений",
		SearchHints: []string{"журнал изменений", "changelog"}},
	{ID: "changes.approval", Category: CategoryChanges, Name: "Процедура согласования изменений",
		SearchHints: []string{"согласование изменений"}},
	{ID: "changes.improvements", Category: CategoryChanges, Name: "Внедренные улучшения",
		SearchHints: []string{"улучшения"}},
	{ID: "changes.planned", Category: CategoryChanges, Name: "Запланированные доработки",
		SearchHints: []string{"доработки", "план развития"}},

	// Для BI-проектов дополнительно
	{ID: "bi.report-metadata", Category: "bi", Name: "Метаданные всех отчетов",
		SearchHints: []string{"метаданные отчетов"}},
	{ID: "bi.datasources", Category: "bi", Name: "Описание источников данных",
		SearchHints: []string{"источники данных"}},
	{ID: "bi.kpi-list", Category: "bi", Name: "Список KPI и метрик",
		SearchHints: []string{"KPI", "метрики", "показатели"}},
	{ID: "bi.calculation-logic", Category: "bi", Name: "Логика расчетов показателей (техническая - формулы, описание)",
		SearchHints: []string{"формулы", "расчет показателей"}},
	{ID: "bi.visualization-rules", Category: "bi", Name: "Правила/стандарты визуализации",
		SearchHints: []string{"визуализация", "дашборд"}},
	{ID: "bi.user-docs", Category: "bi", Name: "Пользовательская документация",
		SearchHints: []string{"руководство пользователя"}},
	{ID: "bi.report-history", Category: "bi", Name: "История изменений отчетов",
		SearchHints: []string{"история изменений"}},
	{ID: "bi.sql-queries", Category: "bi", Name: "Документированные SQL-запросы",
		SearchHints: []string{"SQL", "запросы"}},
	{ID: "bi.etl", Category: "bi", Name: "Описание процессов ETL",
		SearchHints: []string{"ETL", "загрузка данных"}},
	{ID: "bi.db-schemas", Category: "bi", Name: "Схемы баз данных",
		SearchHints: []string{"схема базы данных", "ER-диаграмма"}},

	// Для RPA-проектов дополнительно
	{ID: "rpa.scenarios", Category: "rpa", Name: "Сценарии автоматизации (bot-процессы)",
		SearchHints: []string{"сценарий", "робот", "bot"}},
	{ID: "rpa.executable-paths", Category: "rpa", Name: "Пути к исполняемым файлам",
		SearchHints: []string{"путь", "исполняемый файл"}},
	{ID: "rpa.scheduler", Category: "rpa", Name: "Настройки планировщика задач",
		SearchHints: []string{"планировщик", "расписание"}},
	{ID: "rpa.logs", Category: "rpa", Name: "Логи работы роботов - пути",
		SearchHints: []string{"логи", "журналы"}},
	{ID: "rpa.checkpoints", Category: "rpa", Name: "Описание контрольных точек",
		SearchHints: []string{"контрольные точки"}},
	{ID: "rpa.scaling", Category: "rpa", Name: "Правила масштабирования",
		SearchHints: []string{"масштабирование"}},

	// Для DWH-проектов дополнительно
	{ID: "dwh.data-dictionary", Category: "dwh", Name: "Словарь данных",
		SearchHints: []string{"словарь данных"}},
	{ID: "dwh.mapping", Category: "dwh", Name: "Матрица соответствия источников и целей",
		SearchHints: []string{"маппинг", "соответствие источников"}},
	{ID: "dwh.cleansing", Category: "dwh", Name: "Правила очистки данных",
		SearchHints: []string{"очистка данных"}},
	{ID: "dwh.transformation", Category: "dwh", Name: "Логика преобразования данных",
		SearchHints: []string{"преобразование", "трансформация"}},
	{ID: "dwh.load-plan", Category: "dwh", Name: "План загрузки данных",
		SearchHints: []string{"план загрузки"}},
	{ID: "dwh.versioning", Category: "dwh", Name: "Правила управления версиями",
		SearchHints: []string{"версионирование"}},
	{ID: "dwh.archiving", Category: "dwh", Name: "Стратегия архивации",
		SearchHints: []string{"архивация", "хранение"}},
	{ID: "dwh.etl", Category: "dwh", Name: "Описание процессов ETL",
		SearchHints: []string{"ETL"}},
	{ID: "dwh.sql-queries", Category: "dwh", Name: "Документированные SQL-запросы",
		SearchHints: []string{"SQL"}},
	{ID: "dwh.db-schemas", Category: "dwh", Name: "Схемы баз данных",
		SearchHints: []string{"схема базы данных"}},
}
