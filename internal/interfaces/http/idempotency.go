package http

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

// HeaderIdempotencyKey clave enviada por la consola al confirmar una venta.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay marca las respuestas servidas desde el almacén.
const HeaderIdempotentReplay = "Idempotent-Replayed"

const maxIdempotencyKeyLen = 128

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency repite la respuesta guardada cuando llega la misma Idempotency-Key con el
// mismo cuerpo; con un cuerpo distinto responde 409. Sin cabecera la petición pasa tal cual.
// Solo se guardan respuestas 2xx: un rechazo (stock insuficiente) puede reintentarse.
func Idempotency(store repository.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "Idempotency-Key demasiado larga")
		}

		ctx := c.Context()
		scope := c.Method() + "|" + c.Path() + "|" + key
		requestHash := hashBody(c.Body())

		stored, found, err := store.Get(ctx, scope)
		if err != nil {
			c.Locals(localsErrorKey, err.Error())
			return errorJSON(c, fiber.StatusServiceUnavailable, CodeUnavailable, "no se pudo comprobar la idempotencia")
		}
		if found {
			var rec idempotencyRecord
			if err := json.Unmarshal([]byte(stored), &rec); err != nil {
				c.Locals(localsErrorKey, err.Error())
				return errorJSON(c, fiber.StatusInternalServerError, CodeInternal, "registro de idempotencia corrupto")
			}
			if rec.RequestHash != requestHash {
				return errorJSON(c, fiber.StatusConflict, CodeIdempotencyConflict,
					"Idempotency-Key reutilizada con un cuerpo distinto")
			}
			body, err := base64.StdEncoding.DecodeString(rec.Body)
			if err != nil {
				c.Locals(localsErrorKey, err.Error())
				return errorJSON(c, fiber.StatusInternalServerError, CodeInternal, "registro de idempotencia corrupto")
			}
			if rec.ContentType != "" {
				c.Set(fiber.HeaderContentType, rec.ContentType)
			}
			c.Set(HeaderIdempotentReplay, "true")
			return c.Status(rec.Status).Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}
		rec := idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(c.Response().Body()),
			ContentType: string(c.Response().Header.ContentType()),
			RequestHash: requestHash,
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("serializar registro de idempotencia")
			return nil
		}
		if _, err := store.SetNX(ctx, scope, string(payload), ttl); err != nil {
			log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("guardar registro de idempotencia")
		}
		return nil
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}
