package graphql

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler executes GraphQL requests against the schema. The caller identity
// comes from the request context populated by middleware.OptionalAuth.
type Handler struct {
	schema graphql.Schema
	log    zerolog.Logger
}

func NewHandler(schema graphql.Schema, log zerolog.Logger) *Handler {
	return &Handler{schema: schema, log: log}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Serve handles POST (JSON or application/graphql body) and GET requests.
//
// @Summary      Execute a GraphQL operation
// @Tags         graphql
// @Accept       json
// @Produce      json
// @Param        body  body      request  true  "GraphQL request"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /graphql [post]
func (h *Handler) Serve(c echo.Context) error {
	req, err := readRequest(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if c.Request().Method == http.MethodGet && operationType(req.Query, req.OperationName) == ast.OperationTypeMutation {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "mutations require POST")
	}

	res := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request().Context(),
	})
	if res.HasErrors() {
		h.log.Debug().Interface("errors", res.Errors).Str("operation", req.OperationName).Msg("graphql errors")
	}
	return c.JSON(http.StatusOK, res)
}

func readRequest(c echo.Context) (request, error) {
	var req request
	r := c.Request()
	if r.Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if v := c.QueryParam("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, echo.NewHTTPError(http.StatusBadRequest, "variables must be a JSON object")
			}
		}
		return req, nil
	}

	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), "application/graphql") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
		}
		req.Query = string(body)
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return req, nil
}

// operationType returns the type of the operation that would run, or "" when
// the document does not parse (execution reports the syntax error).
func operationType(query, operationName string) string {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return ""
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" || (op.Name != nil && op.Name.Value == operationName) {
			return op.Operation
		}
	}
	return ""
}
