package processor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/dedup"
	"github.com/MikeSquared-Agency/compass/internal/hermes"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/recommend"
	"github.com/MikeSquared-Agency/compass/internal/scoring"
)

// User returns the caller's record, creating it on first sight.
func (p *Processor) User(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	return p.store.EnsureUser(ctx, userID)
}

// UpdateProfile applies a partial profile update.
func (p *Processor) UpdateProfile(ctx context.Context, userID uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error) {
	if _, err := p.store.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}
	return p.store.UpdateUser(ctx, userID, func(u *model.UserProfile) error {
		u.Profile = u.Profile.Apply(patch)
		return nil
	})
}

// MergeInsights folds declared insights into the user's cumulative sets.
// Existing entries are never removed.
func (p *Processor) MergeInsights(ctx context.Context, userID uuid.UUID, in model.Insights) (*model.UserProfile, error) {
	if _, err := p.store.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	byKind := make(map[model.Kind][]string, len(model.Kinds))
	for _, k := range model.Kinds {
		byKind[k] = in.Get(k)
	}

	var added dedup.Result
	u, err := p.store.UpdateUser(ctx, userID, func(u *model.UserProfile) error {
		added = dedup.MergeInsights(u.Insights, byKind)
		u.Insights = added.Insights
		return nil
	})
	if err != nil {
		return nil, err
	}
	if added.Total() > 0 {
		p.publishInsights(u, model.ModuleGeneral, added, sourceManual)
	}
	return u, nil
}

// SaveAssessment applies a partial assessment update and rescores alignment
// in the same write.
func (p *Processor) SaveAssessment(ctx context.Context, userID uuid.UUID, patch model.AssessmentPatch) (*model.Assessment, error) {
	if _, err := p.store.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	u, err := p.store.UpdateUser(ctx, userID, func(u *model.UserProfile) error {
		next := u.Assessment.Apply(patch)
		scoring.Refresh(next)
		u.Assessment = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	p.logger.Info("assessment saved", "user_id", userID, "alignment_score", u.Assessment.AlignmentScore)
	p.publish(hermes.SubjectAssessmentSaved, hermes.AssessmentSaved{
		UserID:         userID,
		AlignmentScore: u.Assessment.AlignmentScore,
		CurrentStage:   u.Assessment.CurrentStage,
		Complete:       u.Assessment.Complete(),
		Timestamp:      p.now(),
	})
	return u.Assessment, nil
}

// Candidates returns the pool of other active users considered for
// connection suggestions.
func (p *Processor) Candidates(ctx context.Context, userID uuid.UUID) ([]*model.UserProfile, error) {
	return p.store.ListCandidates(ctx, userID, p.poolLimit)
}

// Search looks up other active users matching query across all users, not
// just the suggestion pool.
func (p *Processor) Search(ctx context.Context, userID uuid.UUID, query string) ([]*model.UserProfile, error) {
	return p.store.SearchUsers(ctx, userID, query, recommend.MaxSearchResults)
}

// HandleExtractRequest is the NATS handler for compass.insights.extract.
func (p *Processor) HandleExtractRequest(subject string, data []byte) {
	ctx := context.Background()

	req, err := hermes.ParseExtractRequest(data)
	if err != nil {
		p.logger.Error("failed to parse extract request", "subject", subject, "error", err)
		return
	}

	cands := p.extractor.Extract(req.Module, req.Text)
	if len(cands) == 0 {
		p.logger.Debug("extract request yielded no insights", "user_id", req.UserID, "module", req.Module)
		return
	}

	var added dedup.Result
	u, err := p.store.UpdateUser(ctx, req.UserID, func(u *model.UserProfile) error {
		added = dedup.MergeCandidates(u.Insights, cands)
		u.Insights = added.Insights
		return nil
	})
	if err != nil {
		p.logger.Error("failed to merge requested insights", "user_id", req.UserID, "error", err)
		return
	}

	p.logger.Info("external insights merged", "user_id", req.UserID, "module", req.Module, "candidates", len(cands), "added", added.Total())
	if added.Total() > 0 {
		p.publishInsights(u, req.Module, added, sourceExternal)
	}
}
