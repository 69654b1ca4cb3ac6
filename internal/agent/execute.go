package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
)

func (a *Agent) execute(ctx context.Context, call ToolCall, req *Request, session *entity.AgentSession, now time.Time) toolResult {
	ctx, span := a.tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("agent.tool", call.Name),
		attribute.String("agent.tool_call_id", call.ID),
	))
	defer span.End()

	cmd, err := DecodeCommand(call.Name, call.Arguments)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tool":      call.Name,
			"arguments": call.Arguments,
			"error":     err,
		}).Warn("Rejected tool arguments")
		span.SetStatus(codes.Error, "invalid arguments")
		return failure(err.Error())
	}

	var result toolResult
	switch c := cmd.(type) {
	case *CheckAvailabilityCommand:
		result = a.checkAvailability(ctx, c, session, now)
	case *CreateReservationCommand:
		result = a.createReservation(ctx, c, req, session, now)
	case *ListReservationsCommand:
		result = a.listReservations(ctx, c, req)
	case *CancelReservationCommand:
		result = a.cancelReservation(ctx, c, req)
	}

	ok, _ := result["exito"].(bool)
	span.SetAttributes(attribute.Bool("agent.tool_ok", ok))
	logrus.WithFields(logrus.Fields{
		"identity": req.Identity,
		"tool":     call.Name,
		"ok":       ok,
	}).Info("Tool executed")
	return result
}

// normalizeSlot resolves free-form date and time expressions. Values that
// cannot be resolved are passed through so the services report them.
func normalizeSlot(date, timeInput string, now time.Time) (string, string) {
	day, _ := NormalizeDate(date, now)
	clock, _ := NormalizeTime(timeInput)
	return day, clock
}

func courtKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (a *Agent) checkAvailability(ctx context.Context, c *CheckAvailabilityCommand, session *entity.AgentSession, now time.Time) toolResult {
	date, clock := normalizeSlot(c.Date, c.Time, now)

	res, err := a.availability.Check(ctx, strings.TrimSpace(c.CourtName), date, clock)
	if err != nil {
		return serviceFailure(ToolCheckAvailability, err)
	}

	if res.Available {
		session.MarkVerified(entity.VerifiedSlot{
			Court:     courtKey(c.CourtName),
			Date:      date,
			TimeRange: res.TimeRange,
			Turn:      session.Turn,
		})
	} else {
		session.Forget(courtKey(c.CourtName), date, res.TimeRange)
	}

	return toolResult{
		"exito":      true,
		"disponible": res.Available,
		"mensaje":    res.Message,
		"fecha":      date,
		"hora":       res.TimeRange,
	}
}

func (a *Agent) createReservation(ctx context.Context, c *CreateReservationCommand, req *Request, session *entity.AgentSession, now time.Time) toolResult {
	date, clock := normalizeSlot(c.Date, c.Time, now)

	grid := a.catalog.Grid()
	timeRange, ok := grid.Normalize(clock)
	if !ok {
		return failure(fmt.Sprintf("Horario \"%s\" no válido. Horarios permitidos: %s", c.Time, grid.Joined()))
	}

	if !session.WasVerified(courtKey(c.CourtName), date, timeRange, session.Turn) {
		logrus.WithFields(logrus.Fields{
			"identity": req.Identity,
			"court":    c.CourtName,
			"date":     date,
			"time":     timeRange,
		}).Warn("Blocked reservation of an unverified slot")
		return failure(notVerifiedFailure)
	}
	if !IsConfirmation(req.Message) {
		logrus.WithField("identity", req.Identity).Warn("Blocked reservation without explicit confirmation")
		return failure(notConfirmedFailure)
	}

	res, err := a.reservations.Create(ctx, &service.CreateReservationRequest{
		CourtName:  strings.TrimSpace(c.CourtName),
		Date:       date,
		Time:       timeRange,
		ClientName: c.ClientName,
		Phone:      req.Phone,
	})
	if err != nil {
		return serviceFailure(ToolCreateReservation, err)
	}
	session.Forget(courtKey(c.CourtName), date, timeRange)

	return toolResult{
		"exito":      true,
		"reserva_id": res.ReservationID,
		"fecha":      date,
		"hora":       res.TimeRange,
		"monto":      res.Amount,
		"mensaje":    res.Message,
	}
}

// channelPhone prefers the phone the channel vouches for over the model's.
func channelPhone(req *Request, fromModel string) string {
	if req.Phone != "" {
		return req.Phone
	}
	return strings.TrimSpace(fromModel)
}

func (a *Agent) listReservations(ctx context.Context, c *ListReservationsCommand, req *Request) toolResult {
	res, err := a.reservations.ListForClient(ctx, channelPhone(req, c.Phone))
	if err != nil {
		return serviceFailure(ToolListReservations, err)
	}
	return toolResult{
		"exito":    true,
		"reservas": res.Reservations,
		"mensaje":  res.Message,
	}
}

func (a *Agent) cancelReservation(ctx context.Context, c *CancelReservationCommand, req *Request) toolResult {
	phone := channelPhone(req, c.Phone)
	if phone == "" {
		return failure(missingPhoneCancel)
	}

	res, err := a.reservations.Cancel(ctx, int64(c.ReservationID), phone)
	if err != nil {
		return serviceFailure(ToolCancelReservation, err)
	}
	return toolResult{
		"exito":      true,
		"reserva_id": res.ReservationID,
		"mensaje":    res.Message,
	}
}
