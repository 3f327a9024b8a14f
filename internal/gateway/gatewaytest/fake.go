// Package gatewaytest provides an in-memory gateway.Gateway that records
// every call and keeps track of which messages are still visible.
package gatewaytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"server-warden/internal/gateway"

	"github.com/bwmarrin/discordgo"
)

// Operation names recorded in Call.Op and accepted by FailOn.
const (
	OpSend   = "send"
	OpEmbed  = "embed"
	OpDelete = "delete"
	OpReact  = "react"
	OpNick   = "nick"
)

type Call struct {
	Op        string
	ChannelID string
	MessageID string
	GuildID   string
	UserID    string
	Content   string
	Embed     *discordgo.MessageEmbed
}

type Fake struct {
	mu       sync.Mutex
	calls    []Call
	fail     map[string]error
	nextID   int
	live     map[string]map[string]string // channel -> message id -> content
	members  map[string]*discordgo.Member // guild/user
	users    map[string]*discordgo.User
	guilds   map[string]*discordgo.Guild
	channels map[string]string
}

var _ gateway.Gateway = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		fail:     map[string]error{},
		live:     map[string]map[string]string{},
		members:  map[string]*discordgo.Member{},
		users:    map[string]*discordgo.User{},
		guilds:   map[string]*discordgo.Guild{},
		channels: map[string]string{},
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// AddMember registers a guild member; nick may be empty.
func (f *Fake) AddMember(guildID, userID, username, nick string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &discordgo.User{ID: userID, Username: username}
	f.users[userID] = u
	f.members[guildID+"/"+userID] = &discordgo.Member{GuildID: guildID, User: u, Nick: nick}
}

// PutMember registers a fully populated member and its user.
func (f *Fake) PutMember(m *discordgo.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[m.User.ID] = m.User
	f.members[m.GuildID+"/"+m.User.ID] = m
}

// PutUser registers a user that is not necessarily a member anywhere.
func (f *Fake) PutUser(u *discordgo.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *Fake) AddGuild(g *discordgo.Guild) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds[g.ID] = g
}

func (f *Fake) AddChannel(channelID, guildID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channelID] = guildID
}

// Seed makes a message visible in a channel without recording a call.
func (f *Fake) Seed(channelID, messageID, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveLocked(channelID)[messageID] = content
}

// Calls returns a copy of the recorded calls, optionally filtered by op.
func (f *Fake) Calls(ops ...string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if len(ops) == 0 || contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// Live returns the visible message contents of a channel ordered by id.
func (f *Fake) Live(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.live[channelID]))
	for id := range f.live[channelID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.live[channelID][id])
	}
	return out
}

// Nick returns the current nickname of a registered member.
func (f *Fake) Nick(guildID, userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[guildID+"/"+userID]; ok {
		return m.Nick
	}
	return ""
}

func (f *Fake) SendMessage(_ context.Context, channelID, content string) (string, error) {
	return f.send(Call{Op: OpSend, ChannelID: channelID, Content: content})
}

func (f *Fake) SendEmbed(_ context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error) {
	c := Call{Op: OpEmbed, ChannelID: channelID, Embed: embed}
	if embed != nil {
		c.Content = embed.Description
	}
	return f.send(c)
}

func (f *Fake) send(c Call) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if err := f.fail[c.Op]; err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("msg-%04d", f.nextID)
	f.liveLocked(c.ChannelID)[id] = c.Content
	f.calls[len(f.calls)-1].MessageID = id
	return id, nil
}

func (f *Fake) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpDelete, ChannelID: channelID, MessageID: messageID})
	if err := f.fail[OpDelete]; err != nil {
		return err
	}
	if _, ok := f.live[channelID][messageID]; !ok {
		return gateway.ErrNotFound
	}
	delete(f.live[channelID], messageID)
	return nil
}

func (f *Fake) React(_ context.Context, channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpReact, ChannelID: channelID, MessageID: messageID, Content: emoji})
	return f.fail[OpReact]
}

func (f *Fake) SetNickname(_ context.Context, guildID, userID, nick string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpNick, GuildID: guildID, UserID: userID, Content: nick})
	if err := f.fail[OpNick]; err != nil {
		return err
	}
	m, ok := f.members[guildID+"/"+userID]
	if !ok {
		return gateway.ErrNotFound
	}
	m.Nick = nick
	return nil
}

func (f *Fake) Member(_ context.Context, guildID, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[guildID+"/"+userID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *Fake) User(_ context.Context, userID string) (*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return u, nil
}

func (f *Fake) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return g, nil
}

func (f *Fake) ChannelGuild(_ context.Context, channelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.channels[channelID]
	if !ok {
		return "", gateway.ErrNotFound
	}
	return g, nil
}

func (f *Fake) liveLocked(channelID string) map[string]string {
	m, ok := f.live[channelID]
	if !ok {
		m = map[string]string{}
		f.live[channelID] = m
	}
	return m
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
