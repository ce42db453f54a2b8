// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/config"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/util"
)

// =============================================================================
// PROFILE
// =============================================================================

const profileUsage = "baatcheet profile [show|set --bio B --occupation O --first F --last L --instructions I|teach <fact> [--category C]|facts|forget <id>|avatar <path>|avatar --remove]"

func (r *Runner) runProfile(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw, "remove")

	switch sub := p.Subcommand(); sub {
	case "", "show":
		prof, err := r.App.Profile.Profile(ctx)
		if err != nil {
			return err
		}
		return r.emit("profile", profileData(prof), func() { r.printProfile(prof) })

	case "set", "update":
		var u model.ProfileUpdate
		setString := func(flag string, dst **string) {
			if p.HasFlag(flag) {
				v := p.Flag(flag)
				*dst = &v
			}
		}
		setString("first", &u.FirstName)
		setString("last", &u.LastName)
		setString("bio", &u.Bio)
		setString("occupation", &u.Occupation)
		setString("instructions", &u.CustomInstructions)
		if p.HasFlag("interests") {
			for _, s := range strings.Split(p.Flag("interests"), ",") {
				if s = strings.TrimSpace(s); s != "" {
					u.Interests = append(u.Interests, s)
				}
			}
		}
		prof, err := r.App.ProfileUseCase.Update(ctx, u)
		if err != nil {
			return err
		}
		return r.emit("profile set", profileData(prof), func() {
			fmt.Fprintf(r.Out, "%s Profile updated\n", SuccessStyle.Render("[OK]"))
		})

	case "teach":
		fact := JoinPositionalArgs(p, 1)
		category := p.FlagOrDefault("category", "general")
		if err := r.App.ProfileUseCase.Teach(ctx, fact, category); err != nil {
			return err
		}
		return r.emit("profile teach", map[string]string{"fact": fact, "category": category}, func() {
			fmt.Fprintf(r.Out, "%s BaatCheet will remember that\n", SuccessStyle.Render("[OK]"))
		})

	case "facts":
		facts, err := r.App.Profile.Facts(ctx)
		if err != nil {
			return err
		}
		return r.emit("profile facts", facts, func() {
			if len(facts) == 0 {
				fmt.Fprintln(r.Out, DimStyle.Render("Nothing taught yet. Try: baatcheet profile teach I prefer short answers"))
				return
			}
			for _, f := range facts {
				fmt.Fprintf(r.Out, "  %s %s  %s\n", DimStyle.Render(util.PadWidth(f.Category, 12)),
					ValueStyle.Render(f.Fact), DimStyle.Render(f.ID))
			}
		})

	case "forget":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("fact id", "baatcheet profile forget <id>")
		}
		if err := r.App.Profile.DeleteFact(ctx, id); err != nil {
			return err
		}
		return r.emit("profile forget", map[string]string{"deleted": id}, func() {
			fmt.Fprintf(r.Out, "%s Forgotten\n", SuccessStyle.Render("[OK]"))
		})

	case "avatar":
		if p.BoolFlag("remove") {
			if err := r.App.Profile.DeleteAvatar(ctx); err != nil {
				return err
			}
			return r.emit("profile avatar", map[string]bool{"removed": true}, func() {
				fmt.Fprintf(r.Out, "%s Avatar removed\n", SuccessStyle.Render("[OK]"))
			})
		}
		path := p.Positional(1)
		if path == "" {
			return ErrMissingArgument("path", "baatcheet profile avatar me.png")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return NewCommandError("profile", "avatar", path, err)
		}
		url, err := r.App.ProfileUseCase.UploadAvatar(ctx, filepath.Base(path), data)
		if err != nil {
			return err
		}
		return r.emit("profile avatar", map[string]string{"url": url}, func() {
			fmt.Fprintf(r.Out, "%s Avatar updated: %s\n", SuccessStyle.Render("[OK]"), url)
		})

	default:
		return ErrUnknownSubcommand("profile", sub, profileUsage)
	}
}

func profileData(p model.Profile) map[string]interface{} {
	data := map[string]interface{}{
		"user":      whoamiData(p.User, nil),
		"interests": p.Interests,
		"facts":     len(p.Facts),
	}
	if p.Bio != nil {
		data["bio"] = *p.Bio
	}
	if p.Occupation != nil {
		data["occupation"] = *p.Occupation
	}
	if p.CustomInstructions != nil {
		data["custom_instructions"] = *p.CustomInstructions
	}
	return data
}

func (r *Runner) printProfile(p model.Profile) {
	fmt.Fprintln(r.Out, TitleStyle.Render(p.User.DisplayName()))
	fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Email"), ValueStyle.Render(p.User.Email))
	if p.Occupation != nil {
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Occupation"), ValueStyle.Render(*p.Occupation))
	}
	if p.Bio != nil {
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Bio"), ValueStyle.Render(util.TruncateWidth(util.SingleLine(*p.Bio), 60)))
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Interests"), ValueStyle.Render(strings.Join(p.Interests, ", ")))
	}
	if p.CustomInstructions != nil {
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Instructions"),
			ValueStyle.Render(util.TruncateWidth(util.SingleLine(*p.CustomInstructions), 60)))
	}
	fmt.Fprintf(r.Out, "%s%d\n", RenderLabel("Facts"), len(p.Facts))
}

// =============================================================================
// USAGE / MODES / FEEDBACK
// =============================================================================

func (r *Runner) runUsage(ctx context.Context) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	u, err := r.App.Chat.Usage(ctx)
	if err != nil {
		return err
	}
	data := UsageData{
		Tier:              u.Tier,
		MessagesUsed:      u.MessagesUsed,
		MessagesLimit:     u.MessagesLimit,
		MessagesRemaining: u.MessagesRemaining(),
		ImagesUsed:        u.ImagesUsed,
		ImagesLimit:       u.ImagesLimit,
		ResetsAt:          u.ResetsAt,
	}
	return r.emit("usage", data, func() {
		fmt.Fprintln(r.Out, SectionStyle.Render("Usage ("+u.Tier+")"))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Messages"), quota(u.MessagesUsed, u.MessagesLimit))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Images"), quota(u.ImagesUsed, u.ImagesLimit))
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("File uploads"), quota(u.FileUploadsUsed, u.FileUploadsLimit))
		if u.ResetsAt != nil {
			fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Resets"), DimStyle.Render(u.ResetsAt.Local().Format(time.RFC1123)))
		}
	})
}

// quota renders used/limit, warning once 80% is used.
func quota(used, limit int) string {
	s := fmt.Sprintf("%d / %d", used, limit)
	switch {
	case limit <= 0:
		return DimStyle.Render(fmt.Sprintf("%d", used))
	case used >= limit:
		return ErrorStyle.Render(s)
	case used*5 >= limit*4:
		return WarningStyle.Render(s)
	}
	return ValueStyle.Render(s)
}

func (r *Runner) runModes(ctx context.Context) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	modes, err := r.App.Chat.Modes(ctx)
	if err != nil {
		return err
	}
	return r.emit("modes", modes, func() {
		for _, m := range modes {
			tag := ""
			switch {
			case m.RequiresPro:
				tag = WarningStyle.Render(" [pro]")
			case !m.IsAvailable:
				tag = DimStyle.Render(" [unavailable]")
			}
			fmt.Fprintf(r.Out, "%s %s %s%s\n", m.Icon, HighlightStyle.Render(util.PadWidth(m.ID, 14)),
				DimStyle.Render(m.Description), tag)
		}
	})
}

func (r *Runner) runFeedback(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw)
	in := model.FeedbackInput{
		Category: p.FlagOrDefault("category", "general"),
		Message:  JoinPositionalArgs(p, 0),
		Rating:   p.FlagIntOrDefault("rating", 0),
	}
	if strings.TrimSpace(in.Message) == "" {
		return ErrMissingArgument("message", `baatcheet feedback "love the new modes" --rating 5`)
	}
	if in.Rating < 0 || in.Rating > 5 {
		return NewValidationError("rating", fmt.Sprint(in.Rating), "must be between 1 and 5")
	}
	if err := r.App.Analytics.SubmitFeedback(ctx, in); err != nil {
		return err
	}
	return r.emit("feedback", map[string]bool{"sent": true}, func() {
		fmt.Fprintf(r.Out, "%s Thanks for the feedback\n", SuccessStyle.Render("[OK]"))
	})
}

// =============================================================================
// CONFIG
// =============================================================================

const configUsage = "baatcheet config [show|get <key>|set <key> <value>|path|keys]"

func (r *Runner) runConfig(raw []string) error {
	if r.Config == nil {
		return errors.New("no configuration loaded")
	}
	p := NewArgParser(raw)

	switch sub := p.Subcommand(); sub {
	case "", "show":
		if r.JSON {
			return NewJSONResponse("config", r.Config).Print(r.Out)
		}
		for _, key := range config.GetAllKeys() {
			v, err := r.Config.Get(key)
			if err != nil {
				continue
			}
			fmt.Fprintf(r.Out, "%s%v\n", RenderLabel(key, 32), v)
		}
		return nil

	case "keys":
		return r.emit("config keys", config.GetAllKeys(), func() {
			fmt.Fprintln(r.Out, strings.Join(config.GetAllKeys(), "\n"))
		})

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "baatcheet config get api.base_url")
		}
		v, err := r.Config.Get(key)
		if err != nil {
			return NewValidationError("key", key, err.Error())
		}
		return r.emit("config get", map[string]interface{}{key: v}, func() {
			fmt.Fprintln(r.Out, v)
		})

	case "set":
		key, value := p.Positional(1), JoinPositionalArgs(p, 2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "baatcheet config set logging.level debug")
		}
		next := r.Config.Clone()
		if err := next.Set(key, value); err != nil {
			return NewValidationError("key", key, err.Error())
		}
		if err := next.Validate(); err != nil {
			return err
		}
		path, err := r.saveConfig(next)
		if err != nil {
			return err
		}
		*r.Config = *next
		return r.emit("config set", map[string]string{"key": key, "value": value, "path": path}, func() {
			fmt.Fprintf(r.Out, "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
		})

	case "path":
		path := r.configPath
		if path == "" {
			var err error
			if path, err = config.ConfigPathTOML(); err != nil {
				return err
			}
		}
		return r.emit("config path", map[string]string{"path": path}, func() {
			fmt.Fprintln(r.Out, path)
		})

	default:
		return ErrUnknownSubcommand("config", sub, configUsage)
	}
}

// saveConfig writes cfg to the --config file when given, in that file's
// format, otherwise to the default TOML file.
func (r *Runner) saveConfig(cfg *config.Config) (string, error) {
	if r.configPath == "" {
		path, err := config.ConfigPathTOML()
		if err != nil {
			return "", err
		}
		if err := config.EnsureConfigDir(); err != nil {
			return "", err
		}
		return path, config.SaveTOML(cfg, path)
	}
	switch strings.ToLower(filepath.Ext(r.configPath)) {
	case ".json":
		return r.configPath, config.SaveJSON(cfg, r.configPath)
	case ".yaml", ".yml":
		return r.configPath, config.SaveYAML(cfg, r.configPath)
	default:
		return r.configPath, config.SaveTOML(cfg, r.configPath)
	}
}
