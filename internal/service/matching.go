package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// MatchScore counts how many distinct vacancy keywords appear in the
// skill set, case-insensitively. No normalization by set size.
func MatchScore(skills, keywords []string) int {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(keywords))
	score := 0
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := set[k]; ok {
			score++
		}
	}
	return score
}

// UserSuggestion is a candidate for a vacancy with their match score.
type UserSuggestion struct {
	Account domain.Account `json:"account"`
	Score   int            `json:"score"`
}

// VacancySuggestion is an open vacancy matched against a resume.
type VacancySuggestion struct {
	Vacancy domain.Vacancy `json:"vacancy"`
	Score   int            `json:"score"`
}

// MatchingService scores resumes against vacancies in both directions.
type MatchingService struct {
	vacancies  repository.VacancyRepository
	teams      repository.TeamRepository
	hackathons repository.HackathonRepository
	resumes    repository.ResumeRepository
}

// NewMatchingService constructs a MatchingService.
func NewMatchingService(
	vacancies repository.VacancyRepository,
	teams repository.TeamRepository,
	hackathons repository.HackathonRepository,
	resumes repository.ResumeRepository,
) *MatchingService {
	return &MatchingService{
		vacancies:  vacancies,
		teams:      teams,
		hackathons: hackathons,
		resumes:    resumes,
	}
}

// SuggestUsersForVacancy scores every teamless participant of the
// vacancy's hackathon against the vacancy keywords. Participants
// without a resume are included at score zero. The result is sorted by
// score descending; ties keep participant order.
func (s *MatchingService) SuggestUsersForVacancy(ctx context.Context, vacancyID string) ([]UserSuggestion, error) {
	vacancy, err := s.vacancies.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	team, err := s.teams.GetByID(ctx, vacancy.TeamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	participants, err := s.hackathons.ListParticipants(ctx, team.HackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	suggestions := make([]UserSuggestion, 0, len(participants))
	for _, participant := range participants {
		_, err := s.teams.TeamForAccount(ctx, team.HackathonID, participant.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}

		score := 0
		resume, err := s.resumes.GetByUserAndHackathon(ctx, participant.ID, team.HackathonID)
		switch {
		case err == nil:
			score = MatchScore(append(resume.HardSkills, resume.SoftSkills...), vacancy.Keywords)
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.MapError(err)
		}
		suggestions = append(suggestions, UserSuggestion{Account: participant, Score: score})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions, nil
}

// SuggestVacanciesForResume scores every vacancy in the resume's
// hackathon against the resume's combined skill tags, sorted by score
// descending with stable ties.
func (s *MatchingService) SuggestVacanciesForResume(ctx context.Context, resumeID string) ([]VacancySuggestion, error) {
	resume, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	vacancies, err := s.vacancies.ListByHackathon(ctx, resume.HackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	skills := append(append([]string{}, resume.HardSkills...), resume.SoftSkills...)
	suggestions := make([]VacancySuggestion, 0, len(vacancies))
	for _, vacancy := range vacancies {
		suggestions = append(suggestions, VacancySuggestion{
			Vacancy: vacancy,
			Score:   MatchScore(skills, vacancy.Keywords),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions, nil
}
