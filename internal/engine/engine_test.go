package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"ezswitch/config/models"
	"ezswitch/config/validation"
	"ezswitch/internal/envstore"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zaiURL = "https://api.z.ai/api/anthropic"

// fakeSettingsStore is an in-memory SettingsStore
type fakeSettingsStore struct {
	mu      sync.Mutex
	loaded  models.Settings
	saves   []models.Settings
	saveErr error
}

func newFakeSettingsStore(s models.Settings) *fakeSettingsStore {
	return &fakeSettingsStore{loaded: s}
}

func (f *fakeSettingsStore) Load() models.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeSettingsStore) Save(s models.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, s)
	f.loaded = s
	return nil
}

func (f *fakeSettingsStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

// =============================================================================
// EDIT STATE
// =============================================================================

func TestNew_LoadsSettings(t *testing.T) {
	stored := models.Settings{ZaiKey: "z", ClaudeMode: models.ClaudeAPIKey, Selected: models.ProfileClaude}
	e := New(newFakeSettingsStore(stored))

	assert.Equal(t, stored, e.Edits())
	assert.Equal(t, stored, e.Saved())
}

func TestSetField_WritesThrough(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)

	require.NoError(t, e.SetField(FieldCustomURL, " https://llm.example "))
	require.NoError(t, e.SetField(FieldCustomKey, "ck"))

	assert.Equal(t, 2, store.saveCount())
	assert.Equal(t, " https://llm.example ", e.Edits().CustomURL)
	assert.Equal(t, "https://llm.example", e.Saved().CustomURL)
	assert.Equal(t, "ck", e.Field(FieldCustomKey))
}

func TestSetField_UnknownField(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)

	err := e.SetField("model", "opus")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Zero(t, store.saveCount())

	_, err = ParseField("nope")
	assert.ErrorIs(t, err, ErrUnknownField)

	f, err := ParseField(" ZAI_KEY ")
	require.NoError(t, err)
	assert.Equal(t, FieldZaiKey, f)
}

func TestSetField_SaveFailureKeepsEdit(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	store.saveErr = errors.New("disk full")
	e := New(store)

	err := e.SetField(FieldZaiKey, "k")
	require.Error(t, err)
	assert.Equal(t, "k", e.Edits().ZaiKey)
	assert.Empty(t, e.Saved().ZaiKey)
}

func TestSwitchingProfilesKeepsFields(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))

	require.NoError(t, e.SetField(FieldZaiKey, "z"))
	require.NoError(t, e.SetField(FieldClaudeKey, "c"))
	require.NoError(t, e.Select(models.ProfileCustom))
	require.NoError(t, e.Select(models.ProfileClaude))
	require.NoError(t, e.SetClaudeMode(models.ClaudeAPIKey))
	require.NoError(t, e.Select(models.ProfileZai))

	edits := e.Edits()
	assert.Equal(t, "z", edits.ZaiKey)
	assert.Equal(t, "c", edits.ClaudeKey)
	assert.Equal(t, models.ClaudeAPIKey, edits.ClaudeMode)
}

func TestSelectDoesNotPersist(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)

	require.NoError(t, e.Select(models.ProfileCustom))
	require.NoError(t, e.SetClaudeMode(models.ClaudeAPIKey))
	assert.Zero(t, store.saveCount())

	assert.Error(t, e.Select("openai"))
	assert.Error(t, e.SetClaudeMode("team"))
	assert.Equal(t, models.ProfileCustom, e.Edits().Selected)
}

func TestProfile(t *testing.T) {
	tests := []struct {
		name     string
		settings models.Settings
		want     models.Profile
	}{
		{
			"zai trims key",
			models.Settings{ZaiKey: " k1 ", Selected: models.ProfileZai, ClaudeMode: models.ClaudeSubscription},
			models.ZaiProfile{APIKey: "k1"},
		},
		{
			"claude subscription drops key",
			models.Settings{ClaudeKey: "sk", Selected: models.ProfileClaude, ClaudeMode: models.ClaudeSubscription},
			models.ClaudeProfile{Mode: models.ClaudeSubscription},
		},
		{
			"claude api",
			models.Settings{ClaudeKey: "sk", Selected: models.ProfileClaude, ClaudeMode: models.ClaudeAPIKey},
			models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: "sk"},
		},
		{
			"custom",
			models.Settings{CustomURL: "https://x ", CustomKey: "ck", Selected: models.ProfileCustom, ClaudeMode: models.ClaudeSubscription},
			models.CustomProfile{BaseURL: "https://x", APIKey: "ck"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(newFakeSettingsStore(tt.settings))
			assert.Equal(t, tt.want, e.Profile())
		})
	}
}

// =============================================================================
// ENV OPS
// =============================================================================

func TestToEnvOps(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
		want    []envstore.Op
	}{
		{
			"zai",
			models.ZaiProfile{APIKey: "k1"},
			[]envstore.Op{envstore.SetOp(envstore.AuthTokenVar, "k1"), envstore.SetOp(envstore.BaseURLVar, zaiURL)},
		},
		{
			"custom",
			models.CustomProfile{BaseURL: "https://llm", APIKey: "ck"},
			[]envstore.Op{envstore.SetOp(envstore.AuthTokenVar, "ck"), envstore.SetOp(envstore.BaseURLVar, "https://llm")},
		},
		{
			"claude subscription",
			models.ClaudeProfile{Mode: models.ClaudeSubscription},
			[]envstore.Op{envstore.UnsetOp(envstore.AuthTokenVar), envstore.UnsetOp(envstore.BaseURLVar)},
		},
		{
			"claude api key",
			models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: "sk"},
			[]envstore.Op{envstore.SetOp(envstore.AuthTokenVar, "sk"), envstore.UnsetOp(envstore.BaseURLVar)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToEnvOps(tt.profile))
		})
	}
}

func TestPropertyToEnvOpsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	profileGen := gen.OneGenOf(
		gen.AnyString().Map(func(k string) models.Profile { return models.ZaiProfile{APIKey: k} }),
		gen.AnyString().Map(func(k string) models.Profile { return models.ClaudeProfile{Mode: models.ClaudeAPIKey, APIKey: k} }),
		gen.AnyString().Map(func(k string) models.Profile { return models.ClaudeProfile{Mode: models.ClaudeSubscription, APIKey: k} }),
		gopter.CombineGens(gen.AnyString(), gen.AnyString()).Map(func(v []interface{}) models.Profile {
			return models.CustomProfile{BaseURL: v[0].(string), APIKey: v[1].(string)}
		}),
	)

	properties.Property("same profile gives same ops", prop.ForAll(
		func(p models.Profile) bool {
			first := ToEnvOps(p)
			second := ToEnvOps(p)
			return len(first) == 2 && reflect.DeepEqual(first, second) &&
				first[0].Name == envstore.AuthTokenVar && first[1].Name == envstore.BaseURLVar
		},
		profileGen,
	))

	properties.TestingRun(t)
}

// =============================================================================
// STATUS
// =============================================================================

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		snap models.EnvSnapshot
		want Status
	}{
		{
			"zai wins over custom",
			models.EnvSnapshot{BaseURL: "https://api.z.ai/x", AuthToken: "tok123456789"},
			Status{Kind: UsingZai, MaskedToken: "***"},
		},
		{
			"zai without token",
			models.EnvSnapshot{BaseURL: zaiURL},
			Status{Kind: UsingZai},
		},
		{
			"custom",
			models.EnvSnapshot{BaseURL: "https://llm.example", AuthToken: "sk-ant-1234567890"},
			Status{Kind: UsingCustom, BaseURL: "https://llm.example", MaskedToken: "sk-ant-1...7890"},
		},
		{
			"api key",
			models.EnvSnapshot{AuthToken: "abc"},
			Status{Kind: UsingAPIKey, MaskedToken: "***"},
		},
		{
			"url without token is subscription",
			models.EnvSnapshot{BaseURL: "https://llm.example"},
			Status{Kind: UsingSubscription},
		},
		{
			"nothing set",
			models.EnvSnapshot{},
			Status{Kind: UsingSubscription},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.snap))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Currently using Claude Subscription\n(No environment variables set)", Status{}.String())
	assert.Equal(t, "Currently using Custom Base URL\nBase URL: https://x\nAPI Key: ***",
		Status{Kind: UsingCustom, BaseURL: "https://x", MaskedToken: "***"}.String())
	assert.Equal(t, "Currently using z.ai API", Status{Kind: UsingZai}.String())
	assert.Equal(t, "api-key", UsingAPIKey.String())
}

// =============================================================================
// APPLY
// =============================================================================

func TestApply_Zai(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	require.NoError(t, e.Select(models.ProfileZai))
	envs := envstore.NewMemoryStore(nil)

	result := e.Apply(context.Background(), envs)

	require.True(t, result.OK(), "apply failed: %v", result.Err)
	assert.Equal(t, []envstore.Op{
		envstore.SetOp(envstore.AuthTokenVar, "k1"),
		envstore.SetOp(envstore.BaseURLVar, zaiURL),
	}, envs.Calls())
	assert.Equal(t, Status{Kind: UsingZai, MaskedToken: "***"}, result.Status)
	assert.True(t, result.StatusRead)
	assert.NoError(t, result.SaveErr)
	assert.Equal(t, 2, store.saveCount())
}

func TestApply_ClaudeSubscription(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	require.NoError(t, e.Select(models.ProfileClaude))
	require.NoError(t, e.SetClaudeMode(models.ClaudeSubscription))
	envs := envstore.NewMemoryStore(map[string]string{
		envstore.AuthTokenVar: "old-token",
		envstore.BaseURLVar:   "https://old",
	})

	result := e.Apply(context.Background(), envs)

	require.True(t, result.OK())
	assert.Equal(t, []envstore.Op{
		envstore.UnsetOp(envstore.AuthTokenVar),
		envstore.UnsetOp(envstore.BaseURLVar),
	}, envs.Calls())
	assert.Empty(t, envs.Vars())
	assert.Equal(t, UsingSubscription, result.Status.Kind)
}

func TestApply_ValidationBlocksExternalCalls(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)
	require.NoError(t, e.Select(models.ProfileCustom))
	require.NoError(t, e.SetField(FieldCustomKey, "ck"))
	envs := envstore.NewMemoryStore(nil)
	saves := store.saveCount()

	result := e.Apply(context.Background(), envs)

	var ve *validation.ValidationError
	require.ErrorAs(t, result.Err, &ve)
	assert.Equal(t, validation.FieldCustomURL, ve.Field)
	assert.Empty(t, envs.Calls())
	assert.Zero(t, envs.GetCount())
	assert.Equal(t, saves, store.saveCount())
	assert.False(t, result.StatusRead)
}

func TestApply_EnvFailureSkipsSave(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	saves := store.saveCount()

	envs := envstore.NewMemoryStore(nil)
	envs.FailOn(envstore.BaseURLVar, errors.New("denied"))

	result := e.Apply(context.Background(), envs)

	var applyErr *envstore.ApplyError
	require.ErrorAs(t, result.Err, &applyErr)
	assert.Equal(t, 1, applyErr.Index)
	assert.Equal(t, saves, store.saveCount())
	// The token landed before the failure and the status shows it
	assert.True(t, result.StatusRead)
	assert.Equal(t, UsingAPIKey, result.Status.Kind)
}

func TestApply_SaveFailureIsNotFatal(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	store.saveErr = errors.New("read-only")

	result := e.Apply(context.Background(), envstore.NewMemoryStore(nil))

	assert.True(t, result.OK())
	assert.Error(t, result.SaveErr)
	assert.Equal(t, UsingZai, result.Status.Kind)
}

func TestApply_StatusReadFailure(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	envs := envstore.NewMemoryStore(nil)
	envs.FailGets(errors.New("query failed"))

	result := e.Apply(context.Background(), envs)

	assert.True(t, result.OK())
	assert.Error(t, result.StatusErr)
	assert.False(t, result.StatusRead)
}

func TestApply_Timeout(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	mem := envstore.NewMemoryStore(nil)
	mem.SetDelay(time.Second)

	result := e.Apply(context.Background(), envstore.WithTimeouts(mem, 10*time.Millisecond, 10*time.Millisecond))

	assert.True(t, envstore.IsTimeout(result.Err))
	assert.Empty(t, mem.Calls())
}

// =============================================================================
// PREFILL
// =============================================================================

func TestPrefill(t *testing.T) {
	tests := []struct {
		name    string
		initial models.Settings
		snap    models.EnvSnapshot
		want    models.Settings
		changed bool
	}{
		{
			"zai url fills zai key",
			models.DefaultSettings(),
			models.EnvSnapshot{BaseURL: zaiURL, AuthToken: "z"},
			models.Settings{ZaiKey: "z", ClaudeMode: models.ClaudeSubscription, Selected: models.ProfileZai},
			true,
		},
		{
			"custom url fills custom fields",
			models.DefaultSettings(),
			models.EnvSnapshot{BaseURL: "https://llm", AuthToken: "ck"},
			models.Settings{CustomURL: "https://llm", CustomKey: "ck", ClaudeMode: models.ClaudeSubscription, Selected: models.ProfileZai},
			true,
		},
		{
			"token only fills claude key",
			models.DefaultSettings(),
			models.EnvSnapshot{AuthToken: "sk"},
			models.Settings{ClaudeKey: "sk", ClaudeMode: models.ClaudeSubscription, Selected: models.ProfileZai},
			true,
		},
		{
			"existing values win",
			models.Settings{ZaiKey: "mine", ClaudeMode: models.ClaudeSubscription, Selected: models.ProfileZai},
			models.EnvSnapshot{BaseURL: zaiURL, AuthToken: "theirs"},
			models.Settings{ZaiKey: "mine", ClaudeMode: models.ClaudeSubscription, Selected: models.ProfileZai},
			false,
		},
		{
			"empty environment",
			models.DefaultSettings(),
			models.EnvSnapshot{},
			models.DefaultSettings(),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSettingsStore(tt.initial)
			e := New(store)
			assert.Equal(t, tt.changed, e.Prefill(tt.snap))
			assert.Equal(t, tt.want, e.Edits())
			assert.Zero(t, store.saveCount(), "prefill never saves")
		})
	}
}

// =============================================================================
// RUNNER
// =============================================================================

func TestRunner_ApplyEmitsEvents(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))

	var mu sync.Mutex
	var statuses []Status
	var results []ApplyResult
	r := NewRunner(e, envstore.NewMemoryStore(nil), Events{
		StatusChanged: func(s Status) { mu.Lock(); statuses = append(statuses, s); mu.Unlock() },
		ApplyResult:   func(res ApplyResult) { mu.Lock(); results = append(results, res); mu.Unlock() },
	})

	pending, err := r.Apply()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pending.Wait(ctx)
	require.NoError(t, err)
	require.True(t, result.OK())
	assert.False(t, r.Busy())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, statuses, 1)
	assert.Equal(t, UsingZai, statuses[0].Kind)
	require.Len(t, results, 1)
	assert.Equal(t, result.Ops, results[0].Ops)
}

func TestRunner_EditDuringApplyIsKept(t *testing.T) {
	store := newFakeSettingsStore(models.DefaultSettings())
	e := New(store)
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	mem := envstore.NewMemoryStore(nil)
	mem.SetDelay(100 * time.Millisecond)
	r := NewRunner(e, mem, Events{})

	pending, err := r.Apply()
	require.NoError(t, err)
	require.NoError(t, e.SetField(FieldCustomKey, "typed-during-apply"))
	require.NoError(t, e.Select(models.ProfileCustom))

	result, err := pending.Wait(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK())
	assert.Equal(t, models.ProfileZai, result.Profile)

	stored := store.Load()
	assert.Equal(t, "typed-during-apply", stored.CustomKey)
	assert.Equal(t, "k1", stored.ZaiKey)
	assert.Equal(t, models.ProfileZai, stored.Selected, "the applied profile is what gets recorded")
	assert.Equal(t, "typed-during-apply", e.Saved().CustomKey)
	assert.Equal(t, models.ProfileCustom, e.Edits().Selected)
}

func TestRunner_RejectsConcurrentOperations(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	require.NoError(t, e.SetField(FieldZaiKey, "k1"))
	mem := envstore.NewMemoryStore(nil)
	mem.SetDelay(100 * time.Millisecond)
	r := NewRunner(e, mem, Events{})

	pending, err := r.Apply()
	require.NoError(t, err)
	assert.True(t, r.Busy())

	_, err = r.Apply()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = r.Refresh()
	assert.ErrorIs(t, err, ErrBusy)

	<-pending.Done()
	assert.False(t, r.Busy())

	refresh, err := r.Refresh()
	require.NoError(t, err)
	result, err := refresh.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UsingZai, result.Status.Kind)
}

func TestPending_WaitHonoursContext(t *testing.T) {
	e := New(newFakeSettingsStore(models.DefaultSettings()))
	mem := envstore.NewMemoryStore(nil)
	mem.SetDelay(200 * time.Millisecond)
	r := NewRunner(e, mem, Events{})

	pending, err := r.Refresh()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pending.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-pending.Done()
}
