package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/identity"
	"github.com/hirelane/recruitment-service/internal/observability"
	"github.com/hirelane/recruitment-service/internal/repository"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const idempotencyScope = "applications"

// SubmitApplicationInput is the intake form.
type SubmitApplicationInput struct {
	FirstNames            string
	LastNames             string
	PrimaryPhone          string
	SecondaryPhone        string
	Email                 string
	BirthDate             *time.Time
	LivedInUSA            bool
	NationalIDType        domain.NationalIDType
	NationalIDNumber      string
	Gender                domain.Gender
	AddressLineOne        string
	AddressLineTwo        string
	CityTownID            string
	ActiveStudies         bool
	Career                string
	Institution           string
	CurrentlyEmployed     bool
	CurrentEmployer       string
	PreviousCallCenterXP  bool
	LanguageIDs           []string
	PreviousCallCenterIDs []string
	AreaOfExpertiseIDs    []string
	IdempotencyKey        string
}

// SubmitResult is the stored application and how its person was found.
type SubmitResult struct {
	Application *domain.Application
	Match       identity.MatchKind
	Replayed    bool
}

// FormOptions lists the lookup choices shown on the intake form.
type FormOptions map[domain.LookupKind][]domain.LookupItem

// ApplicationService handles intake and the recruiter pipeline.
type ApplicationService struct {
	applications repository.ApplicationRepository
	history      repository.ApplicationHistoryRepository
	lookups      repository.LookupRepository
	resolver     *identity.Resolver
	idempotency  IdempotencyStore
	idemTTL      time.Duration
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// ApplicationDependencies bundles collaborators. History, Idempotency, Dispatcher and Metrics are optional.
type ApplicationDependencies struct {
	Applications   repository.ApplicationRepository
	History        repository.ApplicationHistoryRepository
	Lookups        repository.LookupRepository
	Resolver       *identity.Resolver
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ApplicationService{
		applications: deps.Applications,
		history:      deps.History,
		lookups:      deps.Lookups,
		resolver:     deps.Resolver,
		idempotency:  deps.Idempotency,
		idemTTL:      ttl,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// FormOptions returns every lookup kind filtered to items displayed on the form.
func (s *ApplicationService) FormOptions(ctx context.Context) (FormOptions, error) {
	out := FormOptions{}
	for _, kind := range domain.LookupKinds() {
		items, err := s.lookups.ListByKind(ctx, kind, true)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []domain.LookupItem{}
		}
		out[kind] = items
	}
	return out, nil
}

// Submit stores an application after resolving its person and enforcing the cooldown.
// A repeated IdempotencyKey with the same form returns the application stored by the first
// request; the same key with a different form is a conflict.
func (s *ApplicationService) Submit(ctx context.Context, in SubmitApplicationInput) (*SubmitResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || s.idempotency == nil {
		return s.submit(ctx, in)
	}

	requestHash, err := hashSubmission(in)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	storeKey := s.idempotency.IdempotencyKey(idempotencyScope, key)
	if res, err := s.replay(ctx, storeKey, requestHash); res != nil || err != nil {
		return res, err
	}
	pending, err := encodeIdempotencyRecord(idempotencyRecord{RequestHash: requestHash})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	claimed, err := s.idempotency.SetNX(ctx, storeKey, pending, s.idemTTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		return s.submit(ctx, in)
	}
	if !claimed {
		if res, err := s.replay(ctx, storeKey, requestHash); res != nil || err != nil {
			return res, err
		}
		return nil, apperrors.NewConflict("a submission with this idempotency key is in progress", nil)
	}

	res, err := s.submit(ctx, in)
	if err != nil {
		if delErr := s.idempotency.Del(ctx, storeKey); delErr != nil {
			s.logger.Warn("release idempotency key", zap.Error(delErr))
		}
		return nil, err
	}
	done, err := encodeIdempotencyRecord(idempotencyRecord{RequestHash: requestHash, ApplicationID: res.Application.ID})
	if err == nil {
		err = s.idempotency.Set(ctx, storeKey, done, s.idemTTL)
	}
	if err != nil {
		s.logger.Warn("record idempotency key", zap.Error(err))
	}
	return res, nil
}

func (s *ApplicationService) replay(ctx context.Context, storeKey, requestHash string) (*SubmitResult, error) {
	val, ok, err := s.idempotency.Get(ctx, storeKey)
	if err != nil || !ok {
		return nil, nil
	}
	record, err := decodeIdempotencyRecord(val)
	if err != nil {
		s.logger.Warn("decode idempotency record", zap.Error(err))
		return nil, nil
	}
	if record.RequestHash != requestHash {
		return nil, apperrors.NewIdempotencyMismatch()
	}
	if record.ApplicationID == "" {
		return nil, nil
	}
	app, err := s.applications.GetByID(ctx, record.ApplicationID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	s.metrics.RecordApplication("replayed")
	return &SubmitResult{Application: app, Replayed: true}, nil
}

func (s *ApplicationService) submit(ctx context.Context, in SubmitApplicationInput) (*SubmitResult, error) {
	if err := s.validate(ctx, &in); err != nil {
		s.metrics.RecordApplication("invalid")
		return nil, err
	}

	match, err := s.resolver.ResolveForApplication(ctx, identity.Input{
		FirstNames:       in.FirstNames,
		LastNames:        in.LastNames,
		PrimaryPhone:     in.PrimaryPhone,
		SecondaryPhone:   in.SecondaryPhone,
		NationalIDType:   in.NationalIDType,
		NationalIDNumber: in.NationalIDNumber,
		Email:            in.Email,
		BirthDate:        in.BirthDate,
		Gender:           in.Gender,
	})
	if err != nil {
		var verr *identity.ValidationError
		var dup *identity.DuplicateApplicationError
		switch {
		case errors.As(err, &verr):
			s.metrics.RecordApplication("invalid")
			details := map[string]any{}
			for field, msg := range verr.Fields {
				details[field] = msg
			}
			return nil, apperrors.NewValidationError("application is invalid", details)
		case errors.As(err, &dup):
			s.metrics.RecordApplication("duplicate")
			return nil, apperrors.NewDuplicateApplication(dup.LastAppliedAt, dup.RetryAfter)
		}
		return nil, err
	}
	s.metrics.RecordIdentityMatch(string(match.Kind))

	norm := match.Input
	app := &domain.Application{
		PersonID:              match.Person.ID,
		FirstNames:            norm.FirstNames,
		LastNames:             norm.LastNames,
		PrimaryPhone:          norm.PrimaryPhone,
		Email:                 norm.Email,
		BirthDate:             in.BirthDate,
		LivedInUSA:            in.LivedInUSA,
		NationalIDType:        norm.NationalIDType,
		NationalIDNumber:      norm.NationalIDNumber,
		Gender:                in.Gender,
		AddressLineOne:        strings.TrimSpace(in.AddressLineOne),
		AddressLineTwo:        strings.TrimSpace(in.AddressLineTwo),
		ActiveStudies:         in.ActiveStudies,
		Career:                strings.TrimSpace(in.Career),
		Institution:           strings.TrimSpace(in.Institution),
		CurrentlyEmployed:     in.CurrentlyEmployed,
		CurrentEmployer:       strings.TrimSpace(in.CurrentEmployer),
		PreviousCallCenterXP:  in.PreviousCallCenterXP,
		LanguageIDs:           in.LanguageIDs,
		PreviousCallCenterIDs: in.PreviousCallCenterIDs,
		AreaOfExpertiseIDs:    in.AreaOfExpertiseIDs,
		Status:                domain.ApplicationStatusNew,
	}
	if norm.SecondaryPhone != "" {
		secondary := norm.SecondaryPhone
		app.SecondaryPhone = &secondary
	}
	if in.CityTownID != "" {
		city := in.CityTownID
		app.CityTownID = &city
	}
	if match.NationalID != nil {
		recordID := match.NationalID.ID
		app.NationalIDRecordID = &recordID
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	s.metrics.RecordApplication("accepted")

	s.publish(ctx, events.New(events.EventApplicationSubmitted, nil, events.ApplicationSubmittedPayload{
		ApplicationID: app.ID,
		PersonID:      app.PersonID,
		Email:         app.Email,
		FullName:      domain.DefaultDisplayName(app.FirstNames, app.LastNames),
		Match:         string(match.Kind),
	}))
	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("person_id", app.PersonID),
		zap.String("match", string(match.Kind)),
		zap.Bool("person_created", match.Created))
	return &SubmitResult{Application: app, Match: match.Kind}, nil
}

func (s *ApplicationService) validate(ctx context.Context, in *SubmitApplicationInput) error {
	errs := fieldErrors{}
	if strings.TrimSpace(in.FirstNames) == "" {
		errs.add("first_names", "is required")
	}
	if strings.TrimSpace(in.LastNames) == "" {
		errs.add("last_names", "is required")
	}
	if !in.Gender.Valid() {
		errs.add("gender", "is not a valid choice")
	}
	if in.CurrentlyEmployed && strings.TrimSpace(in.CurrentEmployer) == "" {
		errs.add("current_employer", "is required when currently employed")
	}

	in.LanguageIDs = dedupe(in.LanguageIDs)
	in.PreviousCallCenterIDs = dedupe(in.PreviousCallCenterIDs)
	in.AreaOfExpertiseIDs = dedupe(in.AreaOfExpertiseIDs)
	in.CityTownID = strings.TrimSpace(in.CityTownID)

	checks := []struct {
		field string
		kind  domain.LookupKind
		ids   []string
	}{
		{"languages", domain.LookupLanguage, in.LanguageIDs},
		{"previous_call_centers", domain.LookupCallCenter, in.PreviousCallCenterIDs},
		{"areas_of_expertise", domain.LookupAreaOfExpertise, in.AreaOfExpertiseIDs},
	}
	if in.CityTownID != "" {
		checks = append(checks, struct {
			field string
			kind  domain.LookupKind
			ids   []string
		}{"city_town", domain.LookupCityTown, []string{in.CityTownID}})
	}
	for _, c := range checks {
		if len(c.ids) == 0 {
			continue
		}
		ok, err := s.offered(ctx, c.kind, c.ids)
		if err != nil {
			return err
		}
		if !ok {
			errs.add(c.field, "contains a choice that is not available")
		}
	}
	return errs.err("application is invalid")
}

// offered reports whether every id exists for kind and is displayed on the form.
func (s *ApplicationService) offered(ctx context.Context, kind domain.LookupKind, ids []string) (bool, error) {
	items, err := s.lookups.GetMany(ctx, kind, ids)
	if err != nil {
		return false, err
	}
	if len(items) != len(ids) {
		return false, nil
	}
	for _, item := range items {
		if !item.DisplayInForm {
			return false, nil
		}
	}
	return true, nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Get returns one application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": id})
		}
		return nil, err
	}
	return app, nil
}

// List returns applications matching filter, newest first.
func (s *ApplicationService) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid filter", map[string]any{"status": "is not a valid choice"})
	}
	return s.applications.List(ctx, filter)
}

// UpdatePipeline stores the recruiter managed fields. When a history repository is configured
// every effective change is recorded with actorID.
func (s *ApplicationService) UpdatePipeline(ctx context.Context, id string, pipeline domain.ApplicationPipeline, actorID string) (*domain.Application, error) {
	errs := fieldErrors{}
	if !pipeline.Status.Valid() {
		errs.add("status", "is not a valid choice")
	}
	if pipeline.HireIQ != nil && (*pipeline.HireIQ < 0 || *pipeline.HireIQ > 100) {
		errs.add("hire_iq", "must be between 0 and 100")
	}
	if err := errs.err("pipeline update is invalid"); err != nil {
		return nil, err
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applications.UpdatePipeline(ctx, id, pipeline); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("update pipeline: %w", err)
	}

	old := before.Pipeline()
	if s.history != nil && !samePipeline(old, pipeline) {
		entry := &domain.ApplicationHistory{ApplicationID: id, OldValue: old, NewValue: pipeline}
		if actorID != "" {
			entry.ChangedByID = &actorID
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("record pipeline history: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// History lists the pipeline changes of an application, oldest first.
func (s *ApplicationService) History(ctx context.Context, id string) ([]domain.ApplicationHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ApplicationHistory{}, nil
	}
	return s.history.ListByApplication(ctx, id)
}

func samePipeline(a, b domain.ApplicationPipeline) bool {
	if (a.HireIQ == nil) != (b.HireIQ == nil) {
		return false
	}
	if a.HireIQ != nil && *a.HireIQ != *b.HireIQ {
		return false
	}
	return a.Status == b.Status && a.PreScreen == b.PreScreen && a.TSS == b.TSS && a.HMInterview == b.HMInterview
}

func (s *ApplicationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("event handlers failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
