package engine

import (
	"context"

	"ezswitch/config/models"
	"ezswitch/internal/envstore"
	"ezswitch/internal/utils"

	"github.com/rs/zerolog/log"
)

// ApplyResult reports each stage of an apply. Err is a validation or
// environment failure; when it is set the settings were not saved.
// SaveErr and StatusErr never undo a successful environment change.
type ApplyResult struct {
	Profile   models.ProfileKind
	Ops       []envstore.Op
	Err       error
	SaveErr   error
	Status    Status
	StatusErr error
	// StatusRead is true when Status came from a fresh snapshot
	StatusRead bool
}

// OK reports whether the environment now reflects the selected profile
func (r ApplyResult) OK() bool {
	return r.Err == nil
}

// ToEnvOps is the method form of the package-level ToEnvOps
func (e *Engine) ToEnvOps(p models.Profile) []envstore.Op {
	return ToEnvOps(p)
}

// ClassifyStatus is the method form of the package-level ClassifyStatus
func (e *Engine) ClassifyStatus(snap models.EnvSnapshot) Status {
	return ClassifyStatus(snap)
}

// Apply validates the selected profile, writes its environment changes in
// order, saves the edits and reads the environment back. Nothing external
// happens when validation fails. A failed operation stops the sequence;
// earlier operations stay applied.
func (e *Engine) Apply(ctx context.Context, envs envstore.Store) ApplyResult {
	return e.applyEdits(ctx, envs, e.Edits())
}

// applyEdits applies the profile selected in edits, a snapshot taken when
// the apply was requested
func (e *Engine) applyEdits(ctx context.Context, envs envstore.Store, edits models.Settings) ApplyResult {
	profile := profileOf(edits)
	result := ApplyResult{Profile: profile.Kind()}

	if err := e.Validate(profile); err != nil {
		result.Err = err
		return result
	}

	result.Ops = ToEnvOps(profile)
	logger := log.With().Str("profile", string(profile.Kind())).Str("backend", envs.Name()).Logger()
	for _, op := range result.Ops {
		if op.Kind == envstore.OpSet && op.Name == envstore.AuthTokenVar {
			logger = logger.With().Str("token", utils.MaskToken(op.Value)).Logger()
		}
	}

	if err := envstore.ApplyOps(ctx, envs, result.Ops); err != nil {
		logger.Error().Err(err).Msg("apply failed")
		result.Err = err
		// Some operations may have landed; show what the environment holds now.
		result.Status, result.StatusErr = e.Refresh(ctx, envs)
		result.StatusRead = result.StatusErr == nil
		return result
	}
	logger.Info().Int("ops", len(result.Ops)).Msg("profile applied")

	// Fields edited while the operations ran were already written through;
	// save the latest edits but record the profile that was applied.
	e.mu.Lock()
	persist := e.edits
	persist.Selected, persist.ClaudeMode = edits.Selected, edits.ClaudeMode
	if err := e.store.Save(persist); err != nil {
		log.Warn().Err(err).Msg("failed to save settings after apply")
		result.SaveErr = err
	} else {
		e.saved = persistedView(persist)
	}
	e.mu.Unlock()

	result.Status, result.StatusErr = e.Refresh(ctx, envs)
	result.StatusRead = result.StatusErr == nil
	return result
}

// Refresh reads the environment and classifies it
func (e *Engine) Refresh(ctx context.Context, envs envstore.Store) (Status, error) {
	snap, err := envstore.ReadSnapshot(ctx, envs)
	if err != nil {
		log.Debug().Err(err).Str("backend", envs.Name()).Msg("status read failed")
		return Status{}, err
	}
	return ClassifyStatus(snap), nil
}
