// Package commandtest builds slash invocations and records replies for
// command tests.
package commandtest

import (
	"sync"

	"server-warden/internal/command"

	"github.com/bwmarrin/discordgo"
)

// Reply is one recorded answer.
type Reply struct {
	Content   string
	Embed     *discordgo.MessageEmbed
	Ephemeral bool
	Followup  bool
}

// Text returns the content, or the embed description for embed replies.
func (r Reply) Text() string {
	if r.Embed != nil {
		return r.Embed.Description
	}
	return r.Content
}

// Recorder implements command.Responder in memory.
type Recorder struct {
	mu        sync.Mutex
	replies   []Reply
	responded bool
	// Err is returned from every call when set.
	Err error
}

var _ command.Responder = (*Recorder)(nil)

func (r *Recorder) Respond(content string, ephemeral bool) error {
	return r.record(Reply{Content: content, Ephemeral: ephemeral}, false)
}

func (r *Recorder) RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	return r.record(Reply{Embed: embed, Ephemeral: ephemeral}, false)
}

func (r *Recorder) FollowupEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	return r.record(Reply{Embed: embed, Ephemeral: ephemeral}, true)
}

func (r *Recorder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

func (r *Recorder) record(rep Reply, followup bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	rep.Followup = followup
	r.replies = append(r.replies, rep)
	r.responded = true
	return nil
}

// Replies returns a copy of everything recorded so far.
func (r *Recorder) Replies() []Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Reply(nil), r.replies...)
}

// Last returns the most recent reply or the zero Reply.
func (r *Recorder) Last() Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return Reply{}
	}
	return r.replies[len(r.replies)-1]
}

type Option = discordgo.ApplicationCommandInteractionDataOption

func Sub(name string, opts ...*Option) *Option {
	return &Option{Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts}
}

func Group(name string, sub *Option) *Option {
	return &Option{Name: name, Type: discordgo.ApplicationCommandOptionSubCommandGroup, Options: []*Option{sub}}
}

func String(name, value string) *Option {
	return &Option{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func User(name, id string) *Option {
	return &Option{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func Channel(name, id string) *Option {
	return &Option{Name: name, Type: discordgo.ApplicationCommandOptionChannel, Value: id}
}

// Invocation describes who runs a command and where.
type Invocation struct {
	GuildID     string
	ChannelID   string
	UserID      string
	Username    string
	Nick        string
	Permissions int64
}

// Event builds an application command interaction for name with opts.
func (in Invocation) Event(name string, opts ...*Option) *discordgo.InteractionCreate {
	user := &discordgo.User{ID: in.UserID, Username: in.Username}
	i := &discordgo.Interaction{
		ID:        "interaction-1",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   in.GuildID,
		ChannelID: in.ChannelID,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Options:     opts,
		},
	}
	if in.GuildID != "" {
		i.Member = &discordgo.Member{GuildID: in.GuildID, User: user, Nick: in.Nick, Permissions: in.Permissions}
	} else {
		i.User = user
	}
	return &discordgo.InteractionCreate{Interaction: i}
}

// Context builds a slash context around the event with a fresh recorder.
func (in Invocation) Context(svc *command.Services, name string, opts ...*Option) (*command.SlashInteractionContext, *Recorder) {
	rec := &Recorder{}
	return &command.SlashInteractionContext{Event: in.Event(name, opts...), Reply: rec, Services: svc}, rec
}
