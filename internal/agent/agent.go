// Package agent runs the tool-calling booking assistant on top of the
// reservation services. The model decides what to say; the host decides what
// is allowed to happen.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
	"github.com/mateolafalce/padelpro/pkg/tracing"
)

const (
	ReplyModelError     = "Lo siento, hubo un error al procesar tu solicitud."
	ReplyTooManyRounds  = "Lo siento, la operación está tomando demasiados pasos."
	toolGenericFailure  = "No se pudo completar la operación. Intentá de nuevo más tarde."
	defaultMaxRounds    = 5
	notVerifiedFailure  = "Antes de reservar hay que verificar la disponibilidad de ese horario con verificar_disponibilidad y presentarle el resumen al cliente."
	notConfirmedFailure = "El cliente todavía no confirmó la reserva. Presentale el resumen (cancha, fecha, hora y precio) y preguntale si desea confirmar."
	missingPhoneCancel  = "Se requiere el teléfono del usuario para cancelar"
)

type Deps struct {
	Model        Model
	Sessions     SessionStore
	Availability service.AvailabilityService
	Reservations service.ReservationService
	Catalog      service.CatalogService
	Business     service.BusinessService
}

type Agent struct {
	model        Model
	sessions     SessionStore
	availability service.AvailabilityService
	reservations service.ReservationService
	catalog      service.CatalogService
	business     service.BusinessService

	maxRounds int
	location  *time.Location
	now       func() time.Time
	tracer    trace.Tracer
}

// New builds an agent. maxRounds caps model calls per user message and loc is
// the zone "today" is computed in.
func New(deps Deps, maxRounds int, loc *time.Location) *Agent {
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	if loc == nil {
		loc = time.Local
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewMemorySessionStore(2 * time.Hour)
	}
	return &Agent{
		model:        deps.Model,
		sessions:     sessions,
		availability: deps.Availability,
		reservations: deps.Reservations,
		catalog:      deps.Catalog,
		business:     deps.Business,
		maxRounds:    maxRounds,
		location:     loc,
		now:          time.Now,
		tracer:       tracing.Tracer("agent"),
	}
}

// Request is one incoming user message.
type Request struct {
	// Identity keys the session and the history, a phone or the local web user.
	Identity string
	// Phone is the channel-verified phone. When set it overrides any phone the
	// model puts in tool arguments.
	Phone   string
	Message string
	History []Message
}

// Reply answers one user message. Failures never surface as errors: the user
// gets a fixed apology instead.
func (a *Agent) Reply(ctx context.Context, req *Request) string {
	ctx, span := a.tracer.Start(ctx, "agent.Reply", trace.WithAttributes(
		attribute.String("agent.identity", req.Identity),
		attribute.Bool("agent.channel_phone", req.Phone != ""),
	))
	defer span.End()

	session := a.loadSession(ctx, req.Identity)
	session.Turn++
	defer a.saveSession(ctx, req.Identity, session)

	now := a.now().In(a.location)
	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: a.systemPrompt(ctx, now)})
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: RoleUser, Content: req.Message})

	tools := ToolSpecs(a.catalog.Grid())

	for round := 1; round <= a.maxRounds; round++ {
		reply, err := a.complete(ctx, round, messages, tools)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "model call failed")
			logrus.WithFields(logrus.Fields{
				"identity": req.Identity,
				"round":    round,
				"error":    err,
			}).Error("Model call failed")
			return ReplyModelError
		}

		if len(reply.ToolCalls) == 0 {
			span.SetAttributes(attribute.Int("agent.rounds", round))
			return strings.TrimSpace(reply.Content)
		}

		messages = append(messages, Message{Role: RoleAssistant, Content: reply.Content, ToolCalls: reply.ToolCalls})
		for _, call := range reply.ToolCalls {
			result := a.execute(ctx, call, req, session, now)
			messages = append(messages, Message{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    encodeResult(result),
			})
		}
	}

	logrus.WithFields(logrus.Fields{
		"identity":   req.Identity,
		"max_rounds": a.maxRounds,
	}).Warn("Agent reached the round limit")
	span.SetStatus(codes.Error, "round limit reached")
	return ReplyTooManyRounds
}

func (a *Agent) complete(ctx context.Context, round int, messages []Message, tools []ToolSpec) (*Reply, error) {
	ctx, span := a.tracer.Start(ctx, "agent.model", trace.WithAttributes(
		attribute.Int("agent.round", round),
		attribute.Int("agent.messages", len(messages)),
	))
	defer span.End()

	reply, err := a.model.Complete(ctx, messages, tools)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("agent.tool_calls", len(reply.ToolCalls)))
	return reply, nil
}

func (a *Agent) systemPrompt(ctx context.Context, now time.Time) string {
	business, err := a.business.Get(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load business config for prompt")
		business = &entity.Business{}
	}
	courts, err := a.catalog.CourtsWithSlots(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load courts for prompt")
	}
	return BuildSystemPrompt(now, business, a.catalog.Grid(), courts)
}

func (a *Agent) loadSession(ctx context.Context, identity string) *entity.AgentSession {
	session, err := a.sessions.Load(ctx, identity)
	if err != nil {
		logrus.WithFields(logrus.Fields{"identity": identity, "error": err}).Warn("Failed to load agent session")
		return &entity.AgentSession{}
	}
	return session
}

func (a *Agent) saveSession(ctx context.Context, identity string, session *entity.AgentSession) {
	if err := a.sessions.Save(ctx, identity, session); err != nil {
		logrus.WithFields(logrus.Fields{"identity": identity, "error": err}).Warn("Failed to save agent session")
	}
}

// ClearSession drops verified slots and the turn counter of identity.
func (a *Agent) ClearSession(ctx context.Context, identity string) error {
	return a.sessions.Clear(ctx, identity)
}

type toolResult map[string]interface{}

func failure(message string) toolResult {
	return toolResult{"exito": false, "error": message}
}

func encodeResult(result toolResult) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Sprintf(`{"exito":false,"error":%q}`, toolGenericFailure)
	}
	return strings.TrimSpace(buf.String())
}

// serviceFailure shows domain messages to the model and hides everything else.
func serviceFailure(tool string, err error) toolResult {
	if msg, ok := entity.MessageOf(err); ok {
		return failure(msg)
	}
	logrus.WithFields(logrus.Fields{"tool": tool, "error": err}).Error("Tool execution failed")
	return failure(toolGenericFailure)
}
