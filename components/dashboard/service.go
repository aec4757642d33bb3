package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/organizeit/go-organizeit/pkg/activity"
)

// Options configures the Service. Every collaborator is provided via
// interface so applications can swap implementations (e.g. the SQLite session
// store) without touching the service.
type Options struct {
	Registry          FeedRegistry
	Actions           ActionStore
	ActionDefinitions []ActionDefinition
	Sessions          SessionStore
	Authenticator     Authenticator
	Authorizer        Authorizer
	Validator         PayloadValidator
	RefreshHook       RefreshHook
	ActivityHooks     activity.Hooks
	ActivityConfig    activity.Config
	Telemetry         Telemetry
	Jitter            *Jitter
	Clock             func() time.Time
	Chat              Responder
	Navigation        []NavItem
	Charts            *ChartRenderer
	// RequireAuth rejects anonymous feed and action calls and enforces feed roles.
	RequireAuth bool
}

// Service serves mock feeds, simulated actions, demo logins and the chat bot.
type Service struct {
	opts     Options
	actions  map[string]ActionDefinition
	activity *activity.Emitter
	charts   *ChartRenderer
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Actions == nil {
		opts.Actions = NewMemoryActionStore()
	}
	if len(opts.ActionDefinitions) == 0 {
		opts.ActionDefinitions = DefaultActionDefinitions()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewMemorySessionStore()
	}
	if opts.Authenticator == nil {
		opts.Authenticator = NewDemoAuthenticator()
	}
	if opts.Authorizer == nil {
		if opts.RequireAuth {
			opts.Authorizer = RoleAuthorizer{}
		} else {
			opts.Authorizer = allowAllAuthorizer{}
		}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Jitter == nil {
		opts.Jitter = NewJitter(0)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Chat == nil {
		opts.Chat = NewKeywordResponder()
	}
	if opts.Navigation == nil {
		opts.Navigation = DefaultNavigation()
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	actions := make(map[string]ActionDefinition, len(opts.ActionDefinitions))
	for _, def := range opts.ActionDefinitions {
		actions[def.Code] = def
	}
	return &Service{
		opts:     opts,
		actions:  actions,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		charts:   opts.Charts,
	}
}

// Registry exposes the feed registry for transports.
func (s *Service) Registry() FeedRegistry {
	return s.opts.Registry
}

// Actions exposes the read-only action map.
func (s *Service) Actions() ActionLookup {
	return s.opts.Actions
}

// RequireAuth reports whether anonymous callers are rejected.
func (s *Service) RequireAuth() bool {
	return s.opts.RequireAuth
}

// ActionDefinition returns the simulated action registered under code.
func (s *Service) ActionDefinition(code string) (ActionDefinition, bool) {
	def, ok := s.actions[code]
	return def, ok
}

func (s *Service) now() time.Time {
	return s.opts.Clock().UTC()
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// Feeds lists the definitions the viewer may read, sorted by code.
func (s *Service) Feeds(ctx context.Context, viewer ViewerContext) []FeedDefinition {
	defs := s.opts.Registry.Definitions()
	if !s.opts.RequireAuth {
		return defs
	}
	out := make([]FeedDefinition, 0, len(defs))
	for _, def := range defs {
		if s.opts.Authorizer.CanViewFeed(ctx, viewer, def) {
			out = append(out, def)
		}
	}
	return out
}

// FetchFeed generates a fresh payload for the feed identified by code.
func (s *Service) FetchFeed(ctx context.Context, viewer ViewerContext, code string, params map[string]string) (FeedData, error) {
	def, ok := s.opts.Registry.Definition(code)
	if !ok {
		return nil, fmt.Errorf("%w: feed %s", ErrNotFound, code)
	}
	return s.fetch(ctx, viewer, def, params)
}

// FetchFeedByPath generates the payload for the feed served at path.
func (s *Service) FetchFeedByPath(ctx context.Context, viewer ViewerContext, path string, params map[string]string) (FeedData, error) {
	def, ok := s.opts.Registry.DefinitionByPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: no feed at %s", ErrNotFound, path)
	}
	return s.fetch(ctx, viewer, def, params)
}

func (s *Service) fetch(ctx context.Context, viewer ViewerContext, def FeedDefinition, params map[string]string) (FeedData, error) {
	if err := s.authorize(ctx, viewer, def); err != nil {
		return nil, err
	}
	gen, ok := s.opts.Registry.Generator(def.Code)
	if !ok || gen == nil {
		return nil, fmt.Errorf("%w: generator for %s", ErrNotFound, def.Code)
	}
	data, err := gen.Generate(ctx, FeedContext{
		Definition: def,
		Viewer:     viewer,
		Params:     params,
		Actions:    s.opts.Actions,
		Jitter:     s.opts.Jitter,
		Now:        s.now(),
	})
	if err != nil {
		s.recordTelemetry(ctx, EventFeedError, map[string]any{
			"feed":  def.Code,
			"error": err.Error(),
		})
		return nil, err
	}
	s.recordTelemetry(ctx, EventFeedFetch, map[string]any{
		"feed":   def.Code,
		"viewer": viewer.UserID,
	})
	return data, nil
}

func (s *Service) authorize(ctx context.Context, viewer ViewerContext, def FeedDefinition) error {
	if !s.opts.RequireAuth {
		return nil
	}
	if viewer.Anonymous() {
		return ErrUnauthorized
	}
	if !s.opts.Authorizer.CanViewFeed(ctx, viewer, def) {
		return fmt.Errorf("%w: feed %s", ErrForbidden, def.Code)
	}
	return nil
}

// actionFeeds lists the feeds whose payload changes after an action.
var actionFeeds = map[string][]string{
	ActionRestartService:    {FeedServices, FeedOverview},
	ActionScaleService:      {FeedServices},
	ActionAcknowledgeAlert:  {FeedAlerts, FeedOverview},
	ActionResolveAlert:      {FeedAlerts, FeedOverview},
	ActionApplyOptimization: {FeedOptimizations, FeedCosts},
	ActionCreateTask:        {FeedTasks},
	ActionUpdateTask:        {FeedTasks},
}

// RunAction simulates the action, records it in the action map and notifies
// refresh and activity hooks.
func (s *Service) RunAction(ctx context.Context, viewer ViewerContext, req ActionRequest) (ActionResult, error) {
	req.Action = strings.TrimSpace(req.Action)
	req.Target = strings.TrimSpace(req.Target)
	def, ok := s.actions[req.Action]
	if !ok {
		return ActionResult{}, fmt.Errorf("%w: action %q", ErrNotFound, req.Action)
	}
	if s.opts.RequireAuth && viewer.Anonymous() {
		return ActionResult{}, ErrUnauthorized
	}
	if err := s.opts.Validator.Validate(def, req.Payload); err != nil {
		return ActionResult{}, err
	}
	target, err := s.resolveTarget(ctx, def, req.Target)
	if err != nil {
		return ActionResult{}, err
	}

	record, err := s.opts.Actions.Record(ctx, ActionRecord{
		Action:    def.Code,
		Target:    target,
		Actor:     viewer.Email,
		Payload:   req.Payload,
		Status:    ActionStatusCompleted,
		Message:   def.SuccessMessage,
		CreatedAt: s.now(),
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("dashboard: record action %s: %w", def.Code, err)
	}

	// the action is already recorded; hook failures are reported, not returned
	feeds := append(append([]string(nil), actionFeeds[def.Code]...), FeedAuditLogs)
	for _, feed := range feeds {
		if err := s.opts.RefreshHook.FeedUpdated(ctx, FeedEvent{
			FeedCode: feed,
			Action:   def.Code,
			Target:   target,
			Reason:   "action",
			At:       record.CreatedAt,
		}); err != nil {
			s.recordTelemetry(ctx, EventRefreshError, map[string]any{
				"feed":   feed,
				"action": def.Code,
				"error":  err.Error(),
			})
		}
	}
	s.emitActivity(ctx, viewer, activity.Event{
		Verb:           def.Code,
		ObjectType:     def.TargetKind,
		ObjectID:       target,
		DefinitionCode: def.Code,
		Metadata:       map[string]any{"record_id": record.ID, "payload": record.Payload},
		OccurredAt:     record.CreatedAt,
	})
	s.recordTelemetry(ctx, EventActionRun, map[string]any{
		"action": def.Code,
		"target": target,
		"viewer": viewer.UserID,
	})
	return ActionResult{Success: true, Message: def.SuccessMessage, Record: record}, nil
}

func (s *Service) resolveTarget(ctx context.Context, def ActionDefinition, target string) (string, error) {
	if def.Code == ActionCreateTask {
		return "task-" + uuid.NewString()[:8], nil
	}
	if target == "" {
		return "", fmt.Errorf("%w: target is required for %s", ErrValidation, def.Code)
	}
	if KnownTarget(def.TargetKind, target) {
		return target, nil
	}
	if def.TargetKind == TargetTask {
		created, err := s.opts.Actions.ByAction(ctx, ActionCreateTask)
		if err != nil {
			return "", err
		}
		for _, rec := range created {
			if rec.Target == target {
				return target, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s %s", ErrNotFound, def.TargetKind, target)
}

func (s *Service) emitActivity(ctx context.Context, viewer ViewerContext, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	meta := activityContextFrom(ctx, viewer)
	evt.ActorID = meta.ActorID
	evt.UserID = meta.UserID
	evt.TenantID = meta.TenantID
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "organizeit.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}

// Login checks the credentials and issues a 30-day session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.opts.Authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.recordTelemetry(ctx, EventAuthFailed, map[string]any{"email": strings.TrimSpace(email)})
		return Session{}, err
	}
	if user.Home == "" {
		user.Home = HomeRoute(user.Role)
	}
	session := NewSession(uuid.NewString(), user, s.now())
	if err := s.opts.Sessions.Save(ctx, session); err != nil {
		return Session{}, fmt.Errorf("dashboard: save session: %w", err)
	}
	s.emitActivity(ctx, session.Viewer(), activity.Event{
		Verb:       "auth.login",
		ObjectType: "session",
		ObjectID:   user.ID,
		Metadata:   map[string]any{"role": user.Role},
		OccurredAt: session.CreatedAt,
	})
	s.recordTelemetry(ctx, EventAuthLogin, map[string]any{"user": user.ID, "role": user.Role})
	return session, nil
}

// Logout discards the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnauthorized
	}
	session, getErr := s.opts.Sessions.Get(ctx, token)
	if err := s.opts.Sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("dashboard: delete session: %w", err)
	}
	if getErr == nil {
		s.emitActivity(ctx, session.Viewer(), activity.Event{
			Verb:       "auth.logout",
			ObjectType: "session",
			ObjectID:   session.User.ID,
		})
		s.recordTelemetry(ctx, EventAuthLogout, map[string]any{"user": session.User.ID})
	}
	return nil
}

// ResolveSession returns the live session for token. Expired sessions are
// deleted and reported as ErrSessionExpired.
func (s *Service) ResolveSession(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	session, err := s.opts.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if session.Expired(s.now()) {
		_ = s.opts.Sessions.Delete(ctx, token)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Viewer resolves the bearer token into a viewer. An empty token yields the
// anonymous viewer.
func (s *Service) Viewer(ctx context.Context, token string) (ViewerContext, error) {
	if strings.TrimSpace(token) == "" {
		return ViewerContext{}, nil
	}
	session, err := s.ResolveSession(ctx, token)
	if err != nil {
		return ViewerContext{}, err
	}
	return session.Viewer(), nil
}

// Navigation returns the pages the viewer may open.
func (s *Service) Navigation(viewer ViewerContext) []NavItem {
	return NavigationFor(s.opts.Navigation, viewer, s.opts.RequireAuth)
}

// Chat answers a chat message.
func (s *Service) Chat(ctx context.Context, viewer ViewerContext, message string) (ChatReply, error) {
	reply, err := s.opts.Chat.Respond(ctx, message)
	if err != nil {
		return ChatReply{}, err
	}
	s.recordTelemetry(ctx, "organizeit.chat.reply", map[string]any{
		"topic":  reply.Topic,
		"viewer": viewer.UserID,
	})
	return reply, nil
}

// NotifyFeedUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyFeedUpdated(ctx context.Context, event FeedEvent) error {
	if event.At.IsZero() {
		event.At = s.now()
	}
	if err := s.opts.RefreshHook.FeedUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, EventFeedRefresh, map[string]any{
		"feed":   event.FeedCode,
		"reason": event.Reason,
	})
	return nil
}

type noopRefreshHook struct{}

func (noopRefreshHook) FeedUpdated(context.Context, FeedEvent) error {
	return nil
}
