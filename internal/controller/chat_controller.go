package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	StreamChat(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", nil))
	})
	h.Get("stream", c.StreamChat)
	h.Post("", c.Chat)
}

// StreamChat serves the SSE endpoint. The request travels as a JSON-encoded
// "payload" query parameter so EventSource's GET-only API can carry it.
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	var request dto.StreamChatRequest
	if payload := ctx.Query("payload"); payload != "" {
		// A malformed payload degrades to an empty prompt and surfaces as
		// an error frame on the stream.
		_ = json.Unmarshal([]byte(payload), &request)
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// The fiber context dies when this handler returns; the stream writer
	// runs on its own detached context with the coordinator's own deadline.
	frames := c.chatService.Stream(context.Background(), request)

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		clientGone := false
		for frame := range frames {
			if clientGone {
				continue // drain so the coordinator can finish
			}
			data, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				clientGone = true
				continue
			}
			if err := w.Flush(); err != nil {
				clientGone = true
			}
		}
	}))

	return nil
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
