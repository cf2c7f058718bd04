package session

import (
	"strings"
	"unicode"
)

// CommandKind classifies a user message.
type CommandKind int

const (
	// CmdNone means the message matched no command phrase.
	CmdNone CommandKind = iota
	// CmdStart begins a new analysis workflow, resetting any previous one.
	CmdStart
	// CmdConfirm finishes project type selection.
	CmdConfirm
	// CmdAnalyze triggers analysis of the collected documents.
	CmdAnalyze
	// CmdAddMore keeps or reopens document intake.
	CmdAddMore
	// CmdHelp asks for usage hints.
	CmdHelp
)

// startPhrases are matched by substring so that greetings with extra words
// («привет, бот») still start the workflow.
var startPhrases = []string{
	"начать анализ",
	"новый анализ",
	"начать заново",
	"привет",
	"здравствуй",
	"start",
	"hello",
}

// exactCommands are matched against the whole normalized message, so that
// «анализ» inside «начать анализ» does not fire first.
var exactCommands = map[string]CommandKind{
	"готово":        CmdConfirm,
	"далее":         CmdConfirm,
	"done":          CmdConfirm,
	"анализ":        CmdAnalyze,
	"анализировать": CmdAnalyze,
	"analyze":       CmdAnalyze,
	"добавить":      CmdAddMore,
	"ещё":           CmdAddMore,
	"еще":           CmdAddMore,
	"помощь":        CmdHelp,
	"справка":       CmdHelp,
	"help":          CmdHelp,
	"?":             CmdHelp,
}

// ParseCommand classifies a message. Matching is case-insensitive and
// tolerant of punctuation and emoji around the command word.
func ParseCommand(text string) CommandKind {
	norm := normalizeCommand(text)
	if norm == "" {
		return CmdNone
	}
	for _, phrase := range startPhrases {
		if strings.Contains(norm, phrase) {
			return CmdStart
		}
	}
	if kind, ok := exactCommands[norm]; ok {
		return kind
	}
	return CmdNone
}

// normalizeCommand lowercases the message and strips everything that is not
// a letter, digit, space or question mark.
func normalizeCommand(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '?':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// IsNoise reports whether a non-command message in a document-collecting
// state should be silently ignored rather than answered with a hint.
// Short fragments without a question mark are chat noise.
func IsNoise(text string) bool {
	norm := normalizeCommand(text)
	if strings.Contains(norm, "?") {
		return false
	}
	return len([]rune(norm)) < 25
}
