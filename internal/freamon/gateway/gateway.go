// Package gateway connects the bot to a Matrix homeserver. It owns the
// sync loop, translates Matrix events into the bot's own message and
// join notifications, and sends replies back out.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// Config holds the Matrix connection settings.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string

	// Rooms are the room IDs the bot joins and treats as public channels.
	Rooms []string

	// DB optionally persists the sync position across restarts. When nil
	// the full room history replays on every start.
	DB *sql.DB
}

// Message is one incoming chat message.
type Message struct {
	RoomID  string
	Sender  string
	Body    string
	Private bool
}

// Join is a membership notification for a watched room.
type Join struct {
	RoomID string
	User   string
	Self   bool
}

// Handlers receive translated Matrix events. Nil fields are skipped.
type Handlers struct {
	OnMessage func(ctx context.Context, msg Message)
	OnJoin    func(ctx context.Context, join Join)
}

// Client wraps the Matrix client.
type Client struct {
	client   *mautrix.Client
	config   *Config
	handlers Handlers
	logger   *slog.Logger
	stopCh   chan struct{}

	mu      sync.Mutex
	members map[id.RoomID][]string
}

// New creates a Matrix gateway client.
func New(config *Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mautrix.NewClient(config.Homeserver, id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("gateway: create client: %w", err)
	}

	c := &Client{
		client:  client,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
		members: make(map[id.RoomID][]string),
	}

	// A persistent sync store keeps the bot from replaying and relearning
	// old history after a restart.
	if config.DB != nil {
		client.Store = newDBSyncStore(config.DB)
	} else {
		logger.Warn("no sync store configured, history will replay on restart")
	}

	return c, nil
}

// Start joins the configured rooms and begins syncing in the background.
func (c *Client) Start(ctx context.Context, handlers Handlers) error {
	c.handlers = handlers

	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)
	syncer.OnEventType(event.StateMember, c.handleMember)

	for _, roomID := range c.config.Rooms {
		if err := c.joinRoom(ctx, id.RoomID(roomID)); err != nil {
			return fmt.Errorf("gateway: join room %s: %w", roomID, err)
		}
	}

	// Sync with exponential back-off reconnection. Without retries a
	// transient homeserver error would silently kill the sync goroutine
	// and leave the bot deaf.
	go func() {
		const (
			backoffMin = 2 * time.Second
			backoffMax = 5 * time.Minute
		)
		backoff := backoffMin
		for {
			backoff = backoffMin
			if err := c.client.Sync(); err != nil {
				select {
				case <-c.stopCh:
					return
				default:
				}
				c.logger.Error("sync stopped, reconnecting", "error", err, "backoff", backoff)
				select {
				case <-c.stopCh:
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > backoffMax {
					backoff = backoffMax
				}
				continue
			}
			return
		}
	}()

	return nil
}

// Stop shuts the sync loop down.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// SendText posts a plain text message to a room.
func (c *Client) SendText(ctx context.Context, roomID, message string) error {
	if _, err := c.client.SendText(ctx, id.RoomID(roomID), message); err != nil {
		return fmt.Errorf("gateway: send message: %w", err)
	}
	return nil
}

// SetTyping toggles the typing indicator, used while the bot pretends
// to compose a reply.
func (c *Client) SetTyping(ctx context.Context, roomID string, typing bool, timeout time.Duration) error {
	if _, err := c.client.UserTyping(ctx, id.RoomID(roomID), typing, timeout); err != nil {
		return fmt.Errorf("gateway: set typing: %w", err)
	}
	return nil
}

// UserID returns the bot's own Matrix ID.
func (c *Client) UserID() string {
	return c.config.UserID
}

// Nick returns the bot's conversational name, the localpart of its ID.
func (c *Client) Nick() string {
	return id.UserID(c.config.UserID).Localpart()
}

// Members lists the display names of everyone known to be in a room.
func (c *Client) Members(ctx context.Context, roomID string) []string {
	c.mu.Lock()
	cached, ok := c.members[id.RoomID(roomID)]
	c.mu.Unlock()
	if ok {
		return cached
	}
	return c.refreshMembers(ctx, id.RoomID(roomID))
}

func (c *Client) refreshMembers(ctx context.Context, roomID id.RoomID) []string {
	resp, err := c.client.JoinedMembers(ctx, roomID)
	if err != nil {
		c.logger.Warn("failed to list room members", "room", roomID, "error", err)
		return nil
	}

	names := make([]string, 0, len(resp.Joined))
	for userID, member := range resp.Joined {
		name := userID.Localpart()
		if member.DisplayName != "" {
			name = member.DisplayName
		}
		names = append(names, name)
	}

	c.mu.Lock()
	c.members[roomID] = names
	c.mu.Unlock()
	return names
}

// isPublicRoom reports whether a room is one of the configured channels.
func (c *Client) isPublicRoom(roomID id.RoomID) bool {
	for _, room := range c.config.Rooms {
		if room == roomID.String() {
			return true
		}
	}
	return false
}

func (c *Client) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.config.UserID) {
		return
	}
	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return
	}
	if c.handlers.OnMessage == nil {
		return
	}

	c.handlers.OnMessage(ctx, Message{
		RoomID:  evt.RoomID.String(),
		Sender:  evt.Sender.Localpart(),
		Body:    content.Body,
		Private: !c.isPublicRoom(evt.RoomID),
	})
}

func (c *Client) handleMember(ctx context.Context, evt *event.Event) {
	content := evt.Content.AsMember()
	if content == nil {
		return
	}

	// Membership changed: drop the cached roster for this room.
	c.mu.Lock()
	delete(c.members, evt.RoomID)
	c.mu.Unlock()

	if content.Membership != event.MembershipJoin {
		return
	}
	if !c.isPublicRoom(evt.RoomID) || c.handlers.OnJoin == nil {
		return
	}

	user := id.UserID(evt.GetStateKey())
	c.handlers.OnJoin(ctx, Join{
		RoomID: evt.RoomID.String(),
		User:   user.Localpart(),
		Self:   user == id.UserID(c.config.UserID),
	})
}

func (c *Client) joinRoom(ctx context.Context, roomID id.RoomID) error {
	if _, err := c.client.JoinRoomByID(ctx, roomID); err != nil {
		// M_FORBIDDEN also covers rooms the bot is already a member of.
		if errors.Is(err, mautrix.MForbidden) {
			c.logger.Warn("already a member or access denied", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}
