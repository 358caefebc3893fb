package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/api/middleware"
	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

const internalMessage = "internal error"

// errorCode classifies err for clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, domain.ErrValidation):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// publicMessage hides everything outside the domain taxonomy.
func publicMessage(err error) string {
	if errorCode(err) == "INTERNAL" {
		return internalMessage
	}
	return err.Error()
}

func viewer(p graphql.ResolveParams) string {
	return middleware.IdentityFrom(p.Context).UserID
}

type resolveFunc func(p graphql.ResolveParams) (interface{}, error)

// query wraps a root query resolver: errors propagate as GraphQL errors with
// the translated message.
func query(log zerolog.Logger, name string, fn resolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err != nil {
			metrics.GraphQLOperationsTotal.WithLabelValues("query", "error").Inc()
			if errorCode(err) == "INTERNAL" {
				log.Error().Err(err).Str("field", name).Msg("query failed")
			}
			return nil, errors.New(publicMessage(err))
		}
		metrics.GraphQLOperationsTotal.WithLabelValues("query", "success").Inc()
		return v, nil
	}
}

// mutation wraps a root mutation resolver. It never returns an error: the
// outcome is reported in the {success, message, code, <entity>} envelope.
func mutation(log zerolog.Logger, name, entity string, fn resolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err != nil {
			metrics.GraphQLOperationsTotal.WithLabelValues("mutation", "failure").Inc()
			code := errorCode(err)
			if code == "INTERNAL" {
				log.Error().Err(err).Str("field", name).Msg("mutation failed")
			}
			return map[string]interface{}{
				"success": false,
				"message": publicMessage(err),
				"code":    code,
			}, nil
		}
		metrics.GraphQLOperationsTotal.WithLabelValues("mutation", "success").Inc()
		out := map[string]interface{}{"success": true, "message": "ok"}
		if entity != "" {
			out[entity] = v
		}
		if extra, ok := v.(map[string]interface{}); ok && entity == "" {
			for k, val := range extra {
				out[k] = val
			}
		}
		return out, nil
	}
}
