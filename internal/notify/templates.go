package notify

import (
	"strings"
	"text/template"
)

// Template renders the subject and body of a notification. Telegram
// sends use only the body.
type Template struct {
	name    string
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) *Template {
	return &Template{
		name:    name,
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

// Render executes both templates against the data bag.
func (t *Template) Render(data map[string]any) (string, string, error) {
	var subject, body strings.Builder
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", err
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

// Name identifies the template in logs.
func (t *Template) Name() string {
	return t.name
}

var (
	TemplateConfirmationCode = mustTemplate("confirmation_code",
		"Confirm your account",
		"Hello {{.Username}}!\n\nYour confirmation code is {{.Code}}. It expires in {{.TTLMinutes}} minutes.\n")

	TemplatePasswordReset = mustTemplate("password_reset",
		"Password reset",
		"Hello!\n\nTo reset your password follow the link:\n{{.FrontendURL}}/reset-password?token={{.Token}}\n\nIf you did not request a reset, ignore this message.\n")

	TemplateHackathonInvite = mustTemplate("hackathon_invite",
		"Invitation to hackathon {{.HackathonName}}",
		"You have been invited to the hackathon {{.HackathonName}}.\nTo accept the invitation follow the link:\n{{.JoinLink}}\n")

	TemplateHackathonEnded = mustTemplate("hackathon_ended",
		"Hackathon {{.HackathonName}} has ended",
		"The hackathon {{.HackathonName}} has ended. Thank you for participating!\n")

	TemplateParticipantRemoved = mustTemplate("participant_removed",
		"You were removed from {{.HackathonName}}",
		"The organizer removed you from the hackathon {{.HackathonName}}.\n")

	TemplateTeamInvite = mustTemplate("team_invite",
		"Invitation to team {{.TeamName}}",
		"You have been invited to the team {{.TeamName}} at hackathon {{.HackathonName}}.\nTo accept the invitation follow the link:\n{{.JoinLink}}\n")

	TemplateApplicationSubmitted = mustTemplate("application_submitted",
		"{{.ApplicantEmail}} applied to {{.VacancyName}}",
		"{{.ApplicantEmail}} applied for the vacancy {{.VacancyName}} on your team {{.TeamName}}. Review the application in your dashboard.\n")

	TemplateApplicationAccepted = mustTemplate("application_accepted",
		"You joined {{.TeamName}}",
		"Your application was accepted. Welcome to the team {{.TeamName}}!\n")

	TemplateTeamMemberJoined = mustTemplate("team_member_joined",
		"{{.MemberEmail}} joined {{.TeamName}}",
		"{{.MemberEmail}} joined your team {{.TeamName}}.\n")

	TemplateTeamMemberLeft = mustTemplate("team_member_left",
		"{{.MemberEmail}} left {{.TeamName}}",
		"{{.MemberEmail}} left your team {{.TeamName}}.\n")

	TemplateOwnershipTransferred = mustTemplate("ownership_transferred",
		"You are now the creator of {{.TeamName}}",
		"The previous creator left the team {{.TeamName}}. Ownership was transferred to you.\n")
)
