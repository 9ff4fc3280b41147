// Package server implements the REST surface of the development backend on
// top of the SQLite store.
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
)

// Options configures the handlers.
type Options struct {
	// SelfID is the from value stored on messages posted through the API.
	SelfID string
	Bus    *bus.Bus
	Logger *zap.Logger
}

type handlers struct {
	db       *store.DB
	selfID   string
	validate *validator.Validate
	bus      *bus.Bus
	logger   *zap.Logger
}

type sendInput struct {
	Body string `json:"body" validate:"required,max=4096"`
}

type inboundInput struct {
	Name string `json:"name" validate:"max=128"`
	Body string `json:"body" validate:"required,max=4096"`
}

// New builds the iris application serving the backend routes. The returned
// application is ready to be used as an http.Handler.
func New(db *store.DB, opts Options) (*iris.Application, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SelfID == "" {
		opts.SelfID = "me"
	}
	v := validator.New()
	h := &handlers{
		db:       db,
		selfID:   opts.SelfID,
		validate: v,
		bus:      opts.Bus,
		logger:   opts.Logger,
	}

	app := iris.New()
	app.Logger().SetLevel("disable")
	app.Validator = v
	app.UseRouter(h.accessLog)

	app.Get("/conversations", h.listConversations)
	conv := app.Party("/conversations/{wa_id}")
	{
		conv.Get("/messages", h.listMessages)
		conv.Post("/messages", h.sendMessage)
		conv.Post("/inbound", h.receiveMessage)
	}
	app.Delete("/messages/{id}", h.deleteMessage)

	app.OnErrorCode(iris.StatusNotFound, func(ctx iris.Context) {
		jsonError(ctx, iris.StatusNotFound, "not_found", "no such route")
	})

	if err := app.Build(); err != nil {
		return nil, err
	}
	return app, nil
}

func (h *handlers) accessLog(ctx iris.Context) {
	start := time.Now()
	ctx.Next()
	h.logger.Debug("request",
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.Int("status", ctx.GetStatusCode()),
		zap.Duration("took", time.Since(start)),
	)
}

func jsonError(ctx iris.Context, status int, code, message string) {
	ctx.StopWithJSON(status, iris.Map{"error": code, "message": message})
}

// readInput decodes and validates the request body, answering the request
// itself when the input is unusable.
func (h *handlers) readInput(ctx iris.Context, out any) bool {
	err := ctx.ReadJSON(out)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
		}
		jsonError(ctx, iris.StatusUnprocessableEntity, "invalid_input", strings.Join(fields, ", "))
		return false
	}
	jsonError(ctx, iris.StatusBadRequest, "bad_request", err.Error())
	return false
}

func (h *handlers) waID(ctx iris.Context) (string, bool) {
	waID := ctx.Params().Get("wa_id")
	if err := h.validate.Var(waID, "required,max=64,printascii"); err != nil {
		jsonError(ctx, iris.StatusBadRequest, "invalid_wa_id", "wa_id must be 1-64 printable ASCII characters")
		return "", false
	}
	return waID, true
}

func (h *handlers) internalError(ctx iris.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	jsonError(ctx, iris.StatusInternalServerError, "internal", op+" failed")
}

func (h *handlers) listConversations(ctx iris.Context) {
	convs, err := h.db.ListConversations()
	if err != nil {
		h.internalError(ctx, "list conversations", err)
		return
	}
	out := make([]api.Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, api.Conversation{
			WaID: c.WaID,
			LastMessage: &api.LastMessage{
				Name:      c.Name,
				Body:      c.Last.Body,
				Timestamp: millis(c.Last.Timestamp),
				From:      c.Last.From,
			},
		})
	}
	_ = ctx.JSON(out)
}

func (h *handlers) listMessages(ctx iris.Context) {
	waID, ok := h.waID(ctx)
	if !ok {
		return
	}
	msgs, err := h.db.ListMessages(waID)
	if err != nil {
		h.internalError(ctx, "list messages", err)
		return
	}
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toAPI(m))
	}
	_ = ctx.JSON(out)
}

func (h *handlers) sendMessage(ctx iris.Context) {
	waID, ok := h.waID(ctx)
	if !ok {
		return
	}
	var in sendInput
	if !h.readInput(ctx, &in) {
		return
	}
	name := ""
	if c, err := h.db.GetContact(waID); err == nil && c != nil {
		name = c.Name
	}
	m := &store.Message{
		ID:        uuid.NewString(),
		WaID:      waID,
		From:      h.selfID,
		Name:      name,
		Body:      in.Body,
		Status:    string(chat.Sent),
		Timestamp: time.Now().UnixMilli(),
	}
	h.store(ctx, m)
}

func (h *handlers) receiveMessage(ctx iris.Context) {
	waID, ok := h.waID(ctx)
	if !ok {
		return
	}
	var in inboundInput
	if !h.readInput(ctx, &in) {
		return
	}
	if in.Name != "" {
		if err := h.db.UpsertContact(&store.Contact{WaID: waID, Name: in.Name}); err != nil {
			h.internalError(ctx, "save contact", err)
			return
		}
	}
	m := &store.Message{
		ID:        uuid.NewString(),
		WaID:      waID,
		From:      waID,
		Name:      in.Name,
		Body:      in.Body,
		Status:    string(chat.Delivered),
		Timestamp: time.Now().UnixMilli(),
	}
	h.store(ctx, m)
}

func (h *handlers) store(ctx iris.Context, m *store.Message) {
	if err := h.db.InsertMessage(m); err != nil {
		h.internalError(ctx, "save message", err)
		return
	}
	h.logger.Info("message stored", zap.String("wa_id", m.WaID), zap.String("id", m.ID), zap.String("from", m.From))
	msg := toAPI(*m)
	h.bus.Emit(bus.MessageStored, msg)

	ctx.StatusCode(iris.StatusCreated)
	_ = ctx.JSON(api.SendEnvelope{OK: true, Message: &msg})
}

func (h *handlers) deleteMessage(ctx iris.Context) {
	id := ctx.Params().Get("id")
	found, err := h.db.DeleteMessage(id)
	if err != nil {
		h.internalError(ctx, "delete message", err)
		return
	}
	if !found {
		jsonError(ctx, iris.StatusNotFound, "not_found", "no message with id "+id)
		return
	}
	h.logger.Info("message deleted", zap.String("id", id))
	h.bus.Emit(bus.MessageRemoved, id)
	ctx.StatusCode(http.StatusOK)
	_ = ctx.JSON(iris.Map{"ok": true})
}

func toAPI(m store.Message) api.Message {
	return api.Message{
		ID:        m.ID,
		WaID:      m.WaID,
		From:      m.From,
		Name:      m.Name,
		Body:      m.Body,
		Timestamp: millis(m.Timestamp),
		Status:    chat.Status(m.Status),
	}
}

func millis(ms int64) api.Timestamp {
	return api.At(time.UnixMilli(ms))
}
