package info

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/gateway"
	"server-warden/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

const (
	cdn      = "https://cdn.discordapp.com"
	maxRoles = 10
	day      = 24 * time.Hour
)

// badges in display order.
var badges = []struct {
	flag discordgo.UserFlags
	name string
}{
	{discordgo.UserFlagDiscordEmployee, "Discord Staff"},
	{discordgo.UserFlagDiscordPartner, "Discord Partner"},
	{discordgo.UserFlagHypeSquadEvents, "HypeSquad Events"},
	{discordgo.UserFlagBugHunterLevel1, "Bug Hunter Level 1"},
	{discordgo.UserFlagBugHunterLevel2, "Bug Hunter Level 2"},
	{discordgo.UserFlagHouseBravery, "HypeSquad Bravery"},
	{discordgo.UserFlagHouseBrilliance, "HypeSquad Brilliance"},
	{discordgo.UserFlagHouseBalance, "HypeSquad Balance"},
	{discordgo.UserFlagEarlySupporter, "Early Nitro Supporter"},
	{discordgo.UserFlagVerifiedBotDeveloper, "Verified Bot Developer"},
	{discordgo.UserFlagDiscordCertifiedModerator, "Discord Certified Moderator"},
	{discordgo.UserFlagVerifiedBot, "Verified Bot"},
}

type InfoCommand struct{}

func (c *InfoCommand) Name() string             { return "info" }
func (c *InfoCommand) Description() string      { return "Look up users and this server" }
func (c *InfoCommand) Category() string         { return "ℹ️ Info Commands" }
func (c *InfoCommand) UserPermissions() []int64 { return []int64{} }

func (c *InfoCommand) SlashDefinition() *discordgo.ApplicationCommand {
	userOpt := []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "User to look up, yourself by default",
	}}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "user", Description: "User information", Options: userOpt},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "server", Description: "Server information"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "avatar", Description: "Get user avatar", Options: userOpt},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "banner", Description: "Get user banner", Options: userOpt},
		},
	}
}

func (c *InfoCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	route := sc.Route()
	switch route.Subcommand {
	case "user":
		return c.user(ctx, sc, route)
	case "server":
		return c.server(ctx, sc)
	case "avatar":
		return c.avatar(ctx, sc, route)
	case "banner":
		return c.banner(ctx, sc, route)
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

func (c *InfoCommand) user(ctx context.Context, sc *command.SlashInteractionContext, route command.Route) error {
	gw := sc.Services.Gateway
	targetID := route.ID("user")
	if targetID == "" {
		targetID = sc.UserID()
	}

	member, err := gw.Member(ctx, sc.GuildID(), targetID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, "❌ User not found in this server.")
		}
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to fetch user.", err)
	}
	u := member.User
	if u == nil {
		return apperr.New(apperr.CodeNotFound, "❌ User not found in this server.")
	}

	var guildRoles []*discordgo.Role
	if g, err := gw.Guild(ctx, sc.GuildID()); err == nil {
		guildRoles = g.Roles
	}
	roles := memberRoles(member, guildRoles, sc.GuildID())

	nick := member.Nick
	if nick == "" {
		nick = u.Username
	}
	created, _ := discordgo.SnowflakeTimestamp(u.ID)
	boosting := "Member not boosting."
	if member.PremiumSince != nil {
		boosting = fmt.Sprintf("Since <t:%d:R>", member.PremiumSince.Unix())
	}
	roleList := "No roles"
	if len(roles) > 0 {
		roleList = strings.Join(roles, " ")
	}

	lines := []string{
		fmt.Sprintf("**User ID:** ``%s``", u.ID),
		fmt.Sprintf("**Nickname:** %s", nick),
		fmt.Sprintf("**Join Date:** <t:%d:R>, *%d* days", member.JoinedAt.Unix(), daysSince(member.JoinedAt)),
		fmt.Sprintf("**Creation Date:** <t:%d:R>, *%d* days", created.Unix(), daysSince(created)),
		fmt.Sprintf("**Badges:** %s", Badges(u.PublicFlags)),
		fmt.Sprintf("**Tag:** <@%s>", u.ID),
		fmt.Sprintf("**Nitro Boosting:** %s", boosting),
		fmt.Sprintf("**Number of Roles:** %d", len(roles)),
		fmt.Sprintf("**Roles:**\n%s", roleList),
	}

	return sc.Embed(&discordgo.MessageEmbed{
		Description: strings.Join(lines, "\n"),
		Color:       sc.SuccessColor(),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("512")},
		Timestamp:   time.Now().Format(time.RFC3339),
	}, false)
}

func (c *InfoCommand) server(ctx context.Context, sc *command.SlashInteractionContext) error {
	g, err := sc.Services.Gateway.Guild(ctx, sc.GuildID())
	if err != nil {
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to fetch server.", err)
	}

	text, voice := 0, 0
	for _, ch := range g.Channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText:
			text++
		case discordgo.ChannelTypeGuildVoice:
			voice++
		}
	}
	created, _ := discordgo.SnowflakeTimestamp(g.ID)

	lines := []string{
		fmt.Sprintf("**Server ID:** ``%s``", g.ID),
		fmt.Sprintf("**Creation Date:** <t:%d:D> *(%d days ago)*", created.Unix(), daysSince(created)),
		fmt.Sprintf("**Members:** %d", g.MemberCount),
		fmt.Sprintf("**Owner:** <@%s>", g.OwnerID),
		fmt.Sprintf("**Nitro Boosting:** Tier %d", g.PremiumTier),
		fmt.Sprintf("**Number of Roles:** %d", len(g.Roles)),
		fmt.Sprintf("**Text Channels:** %d", text),
		fmt.Sprintf("**Voice Channels:** %d", voice),
	}

	embed := &discordgo.MessageEmbed{
		Description: strings.Join(lines, "\n"),
		Color:       sc.SuccessColor(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if g.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: g.IconURL("512")}
	}
	return sc.Embed(embed, false)
}

func (c *InfoCommand) avatar(ctx context.Context, sc *command.SlashInteractionContext, route command.Route) error {
	u, err := targetUser(ctx, sc, route)
	if err != nil {
		return err
	}
	if u.Avatar == "" {
		return apperr.New(apperr.CodeNotFound, "❌ This user does not have a custom avatar.")
	}
	return sc.Embed(imageEmbed(sc, "Avatar for "+u.Username, "avatars", u.ID, u.Avatar), false)
}

func (c *InfoCommand) banner(ctx context.Context, sc *command.SlashInteractionContext, route command.Route) error {
	id := route.ID("user")
	if id == "" {
		id = sc.UserID()
	}
	// Banners are only returned by a direct user fetch.
	u, err := sc.Services.Gateway.User(ctx, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, "❌ User not found.")
		}
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to fetch user.", err)
	}
	if u.Banner == "" {
		return apperr.New(apperr.CodeNotFound, "❌ This user does not have a custom banner.")
	}
	return sc.Embed(imageEmbed(sc, "Banner for "+u.Username, "banners", u.ID, u.Banner), false)
}

// targetUser returns the user option, resolved from the interaction payload
// when possible, or the invoker.
func targetUser(ctx context.Context, sc *command.SlashInteractionContext, route command.Route) (*discordgo.User, error) {
	id := route.ID("user")
	if id == "" || id == sc.UserID() {
		if u := sc.User(); u != nil {
			return u, nil
		}
	}
	data := sc.Event.ApplicationCommandData()
	if data.Resolved != nil {
		if u, ok := data.Resolved.Users[id]; ok {
			return u, nil
		}
	}
	u, err := sc.Services.Gateway.User(ctx, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "❌ User not found.")
		}
		return nil, apperr.Wrap(apperr.CodeTransient, "❌ Failed to fetch user.", err)
	}
	return u, nil
}

func imageEmbed(sc *command.SlashInteractionContext, title, kind, userID, hash string) *discordgo.MessageEmbed {
	base := fmt.Sprintf("%s/%s/%s/%s", cdn, kind, userID, hash)
	png := base + ".png?size=4096"
	return &discordgo.MessageEmbed{
		Title: title,
		Description: fmt.Sprintf("[png](%s) | [jpg](%s) | [webp](%s)",
			png, base+".jpg?size=4096", base+".webp?size=4096"),
		Color:     sc.SuccessColor(),
		Image:     &discordgo.MessageEmbedImage{URL: png},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// memberRoles returns up to maxRoles role mentions, highest position first.
// The @everyone role shares the guild id and is skipped.
func memberRoles(m *discordgo.Member, guildRoles []*discordgo.Role, guildID string) []string {
	pos := make(map[string]int, len(guildRoles))
	for _, r := range guildRoles {
		pos[r.ID] = r.Position
	}

	ids := make([]string, 0, len(m.Roles))
	for _, id := range m.Roles {
		if id != guildID {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return pos[ids[i]] > pos[ids[j]] })
	if len(ids) > maxRoles {
		ids = ids[:maxRoles]
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@&" + id + ">"
	}
	return out
}

// Badges names the public flags of a user, or "None".
func Badges(flags discordgo.UserFlags) string {
	var names []string
	for _, b := range badges {
		if flags&b.flag != 0 {
			names = append(names, b.name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func daysSince(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return int(time.Since(t) / day)
}

func init() {
	command.RegisterCommand(
		&InfoCommand{},
		middleware.WithCommandLogger(),
		middleware.WithUserPermissionCheck(),
		middleware.WithAccessCheck(),
		middleware.WithGuildOnly(),
	)
}
