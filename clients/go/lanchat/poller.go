package lanchat

import (
	"context"
	"time"

	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"github.com/Nandeesh-nh/lan-chat/internal/session"
)

// Default polling cadences. Messages refresh faster than the online
// list because conversations are what the user is watching.
const (
	DefaultMessageInterval = 2 * time.Second
	DefaultUserInterval    = 10 * time.Second
)

// Update is one snapshot of client state, emitted after each poll.
type Update struct {
	Messages  []models.Message // visible in the active conversation
	Users     []string
	Unread    map[chatlog.Conversation]int
	Active    chatlog.Conversation
	Connected bool
}

// Poller drives the polling loop for one logged-in user, feeding a
// Session with each fetched log so unread counts stay current.
type Poller struct {
	Client          *Client
	Session         *session.Session
	MessageInterval time.Duration
	UserInterval    time.Duration

	updates  chan Update
	messages []models.Message
	users    []string
}

// NewPoller creates a poller for the client's logged-in user.
func NewPoller(c *Client) *Poller {
	return &Poller{
		Client:          c,
		Session:         session.New(c.Username),
		MessageInterval: DefaultMessageInterval,
		UserInterval:    DefaultUserInterval,
		updates:         make(chan Update, 1),
	}
}

// Send posts a message through the client and, for a private target,
// opens the peer's tab so the sender immediately sees the conversation
// they just started.
func (p *Poller) Send(text, peer string) (*models.Message, error) {
	msg, err := p.Client.Send(text, peer)
	if err != nil {
		return nil, err
	}
	if peer != "" {
		p.Session.OpenTab(peer)
	}
	return msg, nil
}

// Updates returns the channel the poller emits snapshots on. The
// channel holds only the latest snapshot; a slow reader sees the most
// recent state, not a backlog.
func (p *Poller) Updates() <-chan Update {
	return p.updates
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	msgTick := time.NewTicker(p.MessageInterval)
	defer msgTick.Stop()
	userTick := time.NewTicker(p.UserInterval)
	defer userTick.Stop()

	p.pollMessages()
	p.pollUsers()
	p.emit(true)

	connected := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-msgTick.C:
			connected = p.pollMessages()
			p.emit(connected)
		case <-userTick.C:
			if p.pollUsers() {
				p.emit(connected)
			}
		}
	}
}

// pollMessages fetches the log, updates unread counters and acks the
// active conversation. On failure the last known state is kept.
func (p *Poller) pollMessages() bool {
	msgs, err := p.Client.Messages()
	if err != nil {
		return false
	}

	p.messages = msgs
	p.Session.Observe(msgs)

	// Ack only what the user is actually looking at.
	_ = p.Client.MarkDelivered(p.Session.Active().Peer())
	return true
}

func (p *Poller) pollUsers() bool {
	users, err := p.Client.Users()
	if err != nil {
		return false
	}
	p.users = users
	return true
}

// emit replaces any pending snapshot with the current one.
func (p *Poller) emit(connected bool) {
	active := p.Session.Active()
	u := Update{
		Messages:  chatlog.Visible(p.messages, p.Session.Viewer(), active),
		Users:     p.users,
		Unread:    p.Session.Unreads(),
		Active:    active,
		Connected: connected,
	}

	select {
	case <-p.updates:
	default:
	}
	p.updates <- u
}
