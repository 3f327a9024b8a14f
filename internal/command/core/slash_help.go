package core

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"server-warden/internal/command"
	"server-warden/internal/config"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// helpLine is one leaf command path with its description.
type helpLine struct {
	category string
	path     string
	desc     string
}

// buildHelpFields lists every leaf of every registered slash command, one
// embed field per category.
func buildHelpFields(r *cmd.Registry) []*discordgo.MessageEmbedField {
	if r == nil {
		return nil
	}

	byCategory := make(map[string][]helpLine)
	for _, c := range r.GetAll() {
		root := cmd.Root(c)
		slash, ok := root.(command.SlashProvider)
		if !ok {
			continue
		}
		def := slash.SlashDefinition()
		if def == nil {
			continue
		}
		for _, l := range leaves(root, def) {
			byCategory[l.category] = append(byCategory[l.category], l)
		}
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := weight(cats[i]), weight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	fields := make([]*discordgo.MessageEmbedField, 0, len(cats))
	for _, cat := range cats {
		var sb strings.Builder
		for _, l := range byCategory[cat] {
			sb.WriteString(fmt.Sprintf("`/%s` - %s\n", l.path, l.desc))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  cat,
			Value: strings.TrimSuffix(sb.String(), "\n"),
		})
	}
	return fields
}

func leaves(root cmd.Command, def *discordgo.ApplicationCommand) []helpLine {
	category := func(group string) string {
		if gc, ok := root.(command.GroupCategorizer); ok {
			return gc.GroupCategory(group)
		}
		if meta, ok := root.(command.DiscordMeta); ok {
			return meta.Category()
		}
		return ""
	}

	var out []helpLine
	for _, o := range def.Options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			for _, sub := range o.Options {
				out = append(out, helpLine{
					category: category(o.Name),
					path:     def.Name + " " + o.Name + " " + sub.Name,
					desc:     sub.Description,
				})
			}
		case discordgo.ApplicationCommandOptionSubCommand:
			out = append(out, helpLine{category: category(""), path: def.Name + " " + o.Name, desc: o.Description})
		}
	}
	if len(out) == 0 {
		out = append(out, helpLine{category: category(""), path: def.Name, desc: def.Description})
	}
	return out
}

func weight(category string) int {
	if w, ok := config.CategoryWeights[category]; ok {
		return w
	}
	return math.MaxInt
}
