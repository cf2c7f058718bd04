package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/config"
	mmodels "github.com/chastnik/mm-bot/internal/models"
)

// Mattermost is the Client4-backed platform client. It polls direct-message
// channels with per-channel since cursors and refreshes the channel list
// periodically so conversations started after boot are picked up.
type Mattermost struct {
	api            *model.Client4
	cfg            config.MattermostConfig
	logger         *zap.Logger
	refreshEvery   time.Duration
	requestTimeout time.Duration

	botUserID string
	teamID    string

	mu          sync.RWMutex
	since       map[string]int64
	lastRefresh time.Time
}

// NewMattermost creates a client for the configured server. Connect must be
// called before the first Poll.
func NewMattermost(cfg config.MattermostConfig, logger *zap.Logger) *Mattermost {
	api := model.NewAPIv4Client(cfg.URL)
	api.SetToken(cfg.Token)
	return &Mattermost{
		api:            api,
		cfg:            cfg,
		logger:         logger,
		refreshEvery:   time.Duration(cfg.ChannelRefreshSeconds) * time.Second,
		requestTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		since:          make(map[string]int64),
	}
}

// Connect resolves the bot user and team and loads the initial channel list.
func (m *Mattermost) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	me, _, err := m.api.GetMe(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	m.botUserID = me.Id

	if m.cfg.Team != "" {
		team, _, err := m.api.GetTeamByName(ctx, m.cfg.Team, "")
		if err != nil {
			return fmt.Errorf("failed to resolve team %q: %w", m.cfg.Team, err)
		}
		m.teamID = team.Id
	} else {
		teams, _, err := m.api.GetTeamsForUser(ctx, m.botUserID, "")
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		if len(teams) == 0 {
			return fmt.Errorf("bot user belongs to no team")
		}
		m.teamID = teams[0].Id
	}

	if err := m.refreshChannels(ctx); err != nil {
		return err
	}
	m.logger.Info("connected to mattermost",
		zap.String("user", me.Username),
		zap.String("team_id", m.teamID),
		zap.Int("direct_channels", len(m.since)))
	return nil
}

// refreshChannels reloads the direct-channel list. Channels seen for the
// first time start their cursor at now so old history is not replayed.
func (m *Mattermost) refreshChannels(ctx context.Context) error {
	channels, _, err := m.api.GetChannelsForTeamForUser(ctx, m.teamID, m.botUserID, false, "")
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	now := model.GetMillis()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channels {
		if ch.Type != model.ChannelTypeDirect {
			continue
		}
		if _, known := m.since[ch.Id]; !known {
			m.since[ch.Id] = now
		}
	}
	m.lastRefresh = time.Now()
	return nil
}

// IsDirect reports whether the channel is in the tracked direct-channel set.
func (m *Mattermost) IsDirect(channelID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.since[channelID]
	return ok
}

// Poll fetches new posts from every tracked direct channel. A failing
// channel is logged and skipped; its cursor stays put so nothing is lost.
func (m *Mattermost) Poll(ctx context.Context) ([]mmodels.InboundEvent, error) {
	m.mu.RLock()
	needRefresh := time.Since(m.lastRefresh) >= m.refreshEvery
	m.mu.RUnlock()
	if needRefresh {
		rctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
		if err := m.refreshChannels(rctx); err != nil {
			m.logger.Warn("channel refresh failed", zap.Error(err))
		}
		cancel()
	}

	m.mu.RLock()
	cursors := make(map[string]int64, len(m.since))
	for id, ts := range m.since {
		cursors[id] = ts
	}
	m.mu.RUnlock()

	var events []mmodels.InboundEvent
	for channelID, since := range cursors {
		posts, err := m.pollChannel(ctx, channelID, since)
		if err != nil {
			m.logger.Warn("channel poll failed",
				zap.String("channel_id", channelID), zap.Error(err))
			continue
		}
		events = append(events, posts...)
	}
	return events, nil
}

func (m *Mattermost) pollChannel(ctx context.Context, channelID string, since int64) ([]mmodels.InboundEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	list, _, err := m.api.GetPostsSince(ctx, channelID, since, false)
	if err != nil {
		return nil, err
	}

	var events []mmodels.InboundEvent
	maxCreateAt := since
	for _, post := range list.ToSlice() {
		if post.CreateAt > maxCreateAt {
			maxCreateAt = post.CreateAt
		}
		if post.UserId == m.botUserID || post.DeleteAt != 0 {
			continue
		}
		events = append(events, mmodels.InboundEvent{
			ID:          post.Id,
			ChannelID:   post.ChannelId,
			UserID:      post.UserId,
			Text:        post.Message,
			Attachments: m.attachments(ctx, post),
			CreateAt:    post.CreateAt,
		})
	}

	m.mu.Lock()
	if m.since[channelID] < maxCreateAt {
		m.since[channelID] = maxCreateAt
	}
	m.mu.Unlock()
	return events, nil
}

// attachments resolves file metadata for a post, preferring the metadata
// already embedded in the post payload.
func (m *Mattermost) attachments(ctx context.Context, post *model.Post) []mmodels.Attachment {
	if len(post.FileIds) == 0 {
		return nil
	}

	var infos []*model.FileInfo
	if post.Metadata != nil && len(post.Metadata.Files) == len(post.FileIds) {
		infos = post.Metadata.Files
	} else {
		fetched, _, err := m.api.GetFileInfosForPost(ctx, post.Id, "")
		if err != nil {
			m.logger.Warn("failed to fetch file infos",
				zap.String("post_id", post.Id), zap.Error(err))
			return nil
		}
		infos = fetched
	}

	out := make([]mmodels.Attachment, 0, len(infos))
	for _, info := range infos {
		out = append(out, mmodels.Attachment{ID: info.Id, Name: info.Name, Size: info.Size})
	}
	return out
}

// Send posts a text message.
func (m *Mattermost) Send(ctx context.Context, channelID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	_, _, err := m.api.CreatePost(ctx, &model.Post{ChannelId: channelID, Message: text})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendWithAttachment uploads the file and posts a message referencing it.
func (m *Mattermost) SendWithAttachment(ctx context.Context, channelID, text, filename string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	upload, _, err := m.api.UploadFile(ctx, data, channelID, filename)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	if len(upload.FileInfos) == 0 {
		return fmt.Errorf("upload of %s returned no file info", filename)
	}

	post := &model.Post{
		ChannelId: channelID,
		Message:   text,
		FileIds:   []string{upload.FileInfos[0].Id},
	}
	if _, _, err := m.api.CreatePost(ctx, post); err != nil {
		return fmt.Errorf("failed to send report post: %w", err)
	}
	return nil
}

// FetchAttachment downloads a file by id.
func (m *Mattermost) FetchAttachment(ctx context.Context, fileID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	data, _, err := m.api.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return data, nil
}
