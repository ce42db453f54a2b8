// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/util"
)

const projectsUsage = "baatcheet projects [list|show <id>|create <name>|delete <id>|invite <id> <email> [--role R]|invitations|accept <id>|decline <id>|leave <id>]"

func (r *Runner) runProjects(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw, "yes", "y")

	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		projects, err := r.App.Projects.Projects(ctx)
		if err != nil {
			return err
		}
		data := make([]ProjectData, 0, len(projects))
		for _, pr := range projects {
			data = append(data, projectData(pr))
		}
		return r.emit("projects", data, func() {
			if len(projects) == 0 {
				fmt.Fprintln(r.Out, DimStyle.Render("No projects. Create one with: baatcheet projects create <name>"))
				return
			}
			for _, pr := range projects {
				fmt.Fprintln(r.Out, formatProjectRow(pr))
			}
		})

	case "show":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("project id", "baatcheet projects show <id>")
		}
		pr, err := r.App.Projects.Project(ctx, id)
		if err != nil {
			return err
		}
		return r.emit("projects show", projectData(pr), func() { r.printProject(pr) })

	case "create", "new":
		name := JoinPositionalArgs(p, 1)
		in := model.ProjectInput{Name: name}
		if d := p.FirstFlag("description", "d"); d != "" {
			in.Description = &d
		}
		if ins := p.Flag("instructions"); ins != "" {
			in.Instructions = &ins
		}
		if e := p.Flag("emoji"); e != "" {
			in.Emoji = &e
		}
		pr, err := r.App.ProjectUseCase.Create(ctx, in)
		if err != nil {
			return err
		}
		return r.emit("projects create", projectData(pr), func() {
			fmt.Fprintf(r.Out, "%s Created %s %s\n", SuccessStyle.Render("[OK]"), pr.Name, DimStyle.Render(pr.ID))
		})

	case "delete", "rm":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("project id", "baatcheet projects delete <id>")
		}
		if !p.BoolFlag("yes") && !p.BoolFlag("y") {
			if ok, err := r.confirm(fmt.Sprintf("Delete project %s and its conversations?", id)); err != nil || !ok {
				return err
			}
		}
		if err := r.App.Projects.DeleteProject(ctx, id); err != nil {
			return err
		}
		return r.emit("projects delete", map[string]string{"deleted": id}, func() {
			fmt.Fprintf(r.Out, "%s Deleted %s\n", SuccessStyle.Render("[OK]"), id)
		})

	case "invite":
		id, email := p.Positional(1), p.Positional(2)
		if id == "" || email == "" {
			return ErrMissingArgument("project id and email", "baatcheet projects invite <id> friend@example.com --role viewer")
		}
		role := model.ProjectRole(p.FlagOrDefault("role", string(model.ProjectRoleViewer)))
		if err := r.App.ProjectUseCase.Invite(ctx, id, email, role); err != nil {
			return err
		}
		return r.emit("projects invite", map[string]string{"project_id": id, "email": email, "role": string(role)}, func() {
			fmt.Fprintf(r.Out, "%s Invited %s as %s\n", SuccessStyle.Render("[OK]"), email, role)
		})

	case "invitations", "invites":
		invs, err := r.App.Projects.PendingInvitations(ctx)
		if err != nil {
			return err
		}
		return r.emit("projects invitations", invs, func() {
			if len(invs) == 0 {
				fmt.Fprintln(r.Out, DimStyle.Render("No pending invitations"))
				return
			}
			for _, inv := range invs {
				from := ""
				if inv.InviterName != nil {
					from = "from " + *inv.InviterName
				}
				fmt.Fprintf(r.Out, "%s %s as %s %s  %s\n", RenderStatus(string(inv.Status)),
					ValueStyle.Render(inv.ProjectName), inv.Role, DimStyle.Render(from), DimStyle.Render(inv.ID))
			}
		})

	case "accept", "decline":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("invitation id", "baatcheet projects "+sub+" <id>")
		}
		var err error
		if sub == "accept" {
			err = r.App.Projects.AcceptInvitation(ctx, id)
		} else {
			err = r.App.Projects.DeclineInvitation(ctx, id)
		}
		if err != nil {
			return err
		}
		return r.emit("projects "+sub, map[string]string{sub + "ed": id}, func() {
			fmt.Fprintf(r.Out, "%s Invitation %sd\n", SuccessStyle.Render("[OK]"), sub)
		})

	case "leave":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("project id", "baatcheet projects leave <id>")
		}
		if err := r.App.Projects.Leave(ctx, id); err != nil {
			return err
		}
		return r.emit("projects leave", map[string]string{"left": id}, func() {
			fmt.Fprintf(r.Out, "%s Left project %s\n", SuccessStyle.Render("[OK]"), id)
		})

	default:
		return ErrUnknownSubcommand("projects", sub, projectsUsage)
	}
}

func formatProjectRow(p model.Project) string {
	marker := " "
	if p.IsOwner {
		marker = "*"
	}
	name := p.Name
	if p.Emoji != nil && *p.Emoji != "" {
		name = *p.Emoji + " " + name
	}
	return fmt.Sprintf("%s %s  %s  %s",
		HighlightStyle.Render(marker),
		ValueStyle.Render(util.PadWidth(util.TruncateWidth(name, titleColumns), titleColumns)),
		DimStyle.Render(fmt.Sprintf("%3d convs %2d members", p.ConversationCount, len(p.Collaborators))),
		DimStyle.Render(p.ID))
}

func (r *Runner) printProject(p model.Project) {
	fmt.Fprintln(r.Out, TitleStyle.Render(p.Name))
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintln(r.Out, WrapText(*p.Description, 0))
	}
	me := ""
	if u, ok := r.App.Auth.CachedUser(); ok {
		me = u.ID
	}
	fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Your role"), ValueStyle.Render(string(p.MyRole(me))))
	fmt.Fprintf(r.Out, "%s%d\n", RenderLabel("Conversations"), p.ConversationCount)
	if p.Instructions != nil && *p.Instructions != "" {
		fmt.Fprintf(r.Out, "%s%s\n", RenderLabel("Instructions"), util.TruncateWidth(util.SingleLine(*p.Instructions), 60))
	}
	if len(p.Collaborators) > 0 {
		fmt.Fprintln(r.Out, SectionStyle.Render("Members"))
		for _, c := range p.Collaborators {
			name := c.UserID
			if c.User != nil {
				name = c.User.DisplayName()
			}
			fmt.Fprintf(r.Out, "  %s %s\n", util.PadWidth(name, 24), DimStyle.Render(string(c.Role)))
		}
	}
}
