package command

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Route is the resolved subcommand path of a slash invocation plus its leaf
// options by name.
type Route struct {
	Group      string
	Subcommand string
	Options    map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// Path joins group and subcommand with a space, e.g. "counting set".
func (r Route) Path() string {
	return strings.TrimSpace(r.Group + " " + r.Subcommand)
}

// String returns the trimmed string option name, or "".
func (r Route) String(name string) string {
	o, ok := r.Options[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return strings.TrimSpace(o.StringValue())
}

// ID returns the snowflake carried by a user, channel or role option.
func (r Route) ID(name string) string {
	o, ok := r.Options[name]
	if !ok {
		return ""
	}
	switch o.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable:
		if s, ok := o.Value.(string); ok {
			return s
		}
	}
	return ""
}

// ResolveRoute walks the option tree of an application command interaction.
func ResolveRoute(data discordgo.ApplicationCommandInteractionData) Route {
	r := Route{Options: map[string]*discordgo.ApplicationCommandInteractionDataOption{}}
	opts := data.Options
	for len(opts) == 1 {
		o := opts[0]
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			r.Group = o.Name
			opts = o.Options
			continue
		case discordgo.ApplicationCommandOptionSubCommand:
			r.Subcommand = o.Name
			opts = o.Options
		}
		break
	}
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand ||
			o.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			continue
		}
		r.Options[o.Name] = o
	}
	return r
}

// Route resolves the invocation's subcommand path.
func (sc *SlashInteractionContext) Route() Route {
	if sc.Event == nil || sc.Event.Type != discordgo.InteractionApplicationCommand {
		return Route{Options: map[string]*discordgo.ApplicationCommandInteractionDataOption{}}
	}
	return ResolveRoute(sc.Event.ApplicationCommandData())
}

// User returns the invoking user, from the member in guilds.
func (sc *SlashInteractionContext) User() *discordgo.User {
	if sc.Event == nil {
		return nil
	}
	if sc.Event.Member != nil && sc.Event.Member.User != nil {
		return sc.Event.Member.User
	}
	return sc.Event.User
}

// UserID returns the invoking user id or "".
func (sc *SlashInteractionContext) UserID() string {
	if u := sc.User(); u != nil {
		return u.ID
	}
	return ""
}

func (sc *SlashInteractionContext) GuildID() string {
	if sc.Event == nil {
		return ""
	}
	return sc.Event.GuildID
}

func (sc *SlashInteractionContext) ChannelID() string {
	if sc.Event == nil {
		return ""
	}
	return sc.Event.ChannelID
}
