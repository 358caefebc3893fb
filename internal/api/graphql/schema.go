package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// Services are the use cases resolvers call into.
type Services struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Boards   ports.BoardService
	Pins     ports.PinService
	Comments ports.CommentService
}

type builder struct {
	svc Services
	log zerolog.Logger

	user, board, boardPin, pin, membership, comment, boardWithPins *graphql.Object
}

// NewSchema builds the executable schema.
func NewSchema(svc Services, log zerolog.Logger) (graphql.Schema, error) {
	b := &builder{svc: svc, log: log}
	b.objectTypes()
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.queryType(),
		Mutation: b.mutationType(),
	})
}

func nonNull(t graphql.Type) graphql.Type { return graphql.NewNonNull(t) }

func listOf(t graphql.Type) graphql.Type { return nonNull(graphql.NewList(nonNull(t))) }

func (b *builder) objectTypes() {
	b.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":       {Type: nonNull(graphql.ID)},
				"username": {Type: nonNull(graphql.String)},
				"email": {
					Type:        graphql.String,
					Description: "Only visible to the user itself.",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						u := p.Source.(*domain.User)
						if !domain.SameID(viewer(p), u.ID) {
							return nil, nil
						}
						return u.Email, nil
					},
				},
				"avatar": {Type: graphql.String},
				"avatarUrl": {
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						u := p.Source.(*domain.User)
						if u.Avatar == "" {
							return nil, nil
						}
						return b.svc.Pins.ImageURL(u.Avatar), nil
					},
				},
				"role":      {Type: nonNull(graphql.String)},
				"createdAt": {Type: nonNull(graphql.DateTime)},
				"boards": {
					Type: listOf(b.board),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.svc.Boards.BoardsByUser(p.Context, viewer(p), p.Source.(*domain.User).ID)
					},
				},
				"pins": {
					Type: listOf(b.pin),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.svc.Pins.PinsByUser(p.Context, viewer(p), p.Source.(*domain.User).ID)
					},
				},
			}
		}),
	})

	b.boardPin = graphql.NewObject(graphql.ObjectConfig{
		Name:        "BoardPin",
		Description: "A pin reference held by a board.",
		Fields: graphql.Fields{
			"pinId":   {Type: nonNull(graphql.ID)},
			"savedAt": {Type: nonNull(graphql.DateTime)},
		},
	})

	b.board = graphql.NewObject(graphql.ObjectConfig{
		Name: "Board",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          {Type: nonNull(graphql.ID)},
				"userId":      {Type: nonNull(graphql.ID)},
				"title":       {Type: nonNull(graphql.String)},
				"description": {Type: graphql.String},
				"isPrivate":   {Type: nonNull(graphql.Boolean)},
				"createdAt":   {Type: nonNull(graphql.DateTime)},
				"updatedAt":   {Type: nonNull(graphql.DateTime)},
				"pinCount": {
					Type: nonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source.(*domain.Board).PinCount(), nil
					},
				},
				"pinRefs": {
					Type: listOf(b.boardPin),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source.(*domain.Board).Pins, nil
					},
				},
				"pins": {
					Type:        listOf(b.pin),
					Description: "Member pins visible to the viewer, most recently saved first.",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.svc.Boards.PinsOnBoard(p.Context, viewer(p), p.Source.(*domain.Board))
					},
				},
				"user": {
					Type: b.user,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.optionalUser(p, p.Source.(*domain.Board).UserID)
					},
				},
			}
		}),
	})

	b.membership = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Membership",
		Description: "A board a pin is saved to.",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"boardId": {Type: nonNull(graphql.ID)},
				"savedAt": {Type: nonNull(graphql.DateTime)},
				"board": {
					Type: b.board,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						board, err := b.svc.Boards.GetBoard(p.Context, viewer(p), p.Source.(domain.Membership).BoardID)
						if errors.Is(err, domain.ErrNotFound) {
							return nil, nil
						}
						return board, err
					},
				},
			}
		}),
	})

	b.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        {Type: nonNull(graphql.ID)},
				"pinId":     {Type: nonNull(graphql.ID)},
				"userId":    {Type: nonNull(graphql.ID)},
				"text":      {Type: nonNull(graphql.String)},
				"createdAt": {Type: nonNull(graphql.DateTime)},
				"user": {
					Type: b.user,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.optionalUser(p, p.Source.(*domain.Comment).UserID)
					},
				},
			}
		}),
	})

	b.pin = graphql.NewObject(graphql.ObjectConfig{
		Name: "Pin",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          {Type: nonNull(graphql.ID)},
				"userId":      {Type: nonNull(graphql.ID)},
				"title":       {Type: graphql.String},
				"description": {Type: graphql.String},
				"link":        {Type: graphql.String},
				"tags":        {Type: listOf(graphql.String)},
				"imagePath":   {Type: nonNull(graphql.String)},
				"imageWidth":  {Type: nonNull(graphql.Int)},
				"imageHeight": {Type: nonNull(graphql.Int)},
				"isPrivate":   {Type: nonNull(graphql.Boolean)},
				"createdAt":   {Type: nonNull(graphql.DateTime)},
				"updatedAt":   {Type: nonNull(graphql.DateTime)},
				"imageUrl": {
					Type: nonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.svc.Pins.ImageURL(p.Source.(*domain.Pin).ImagePath), nil
					},
				},
				"boards": {
					Type: listOf(b.membership),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source.(*domain.Pin).Boards, nil
					},
				},
				"commentCount": {
					Type: nonNull(graphql.Int),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return len(p.Source.(*domain.Pin).Comments), nil
					},
				},
				"comments": {
					Type: listOf(b.comment),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.svc.Comments.ListComments(p.Context, viewer(p), p.Source.(*domain.Pin).ID)
					},
				},
				"user": {
					Type: b.user,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return b.optionalUser(p, p.Source.(*domain.Pin).UserID)
					},
				},
			}
		}),
	})

	b.boardWithPins = graphql.NewObject(graphql.ObjectConfig{
		Name: "BoardWithPins",
		Fields: graphql.Fields{
			"board": {Type: nonNull(b.board)},
			"pins":  {Type: listOf(b.pin)},
		},
	})
}

// optionalUser resolves a nested owner, yielding null for deleted accounts.
func (b *builder) optionalUser(p graphql.ResolveParams, id string) (interface{}, error) {
	u, err := b.svc.Users.GetUser(p.Context, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// envelope declares a mutation result type with an optional entity field.
func envelope(name, entityField string, entity graphql.Output, extra graphql.Fields) *graphql.Object {
	fields := graphql.Fields{
		"success": {Type: nonNull(graphql.Boolean)},
		"message": {Type: nonNull(graphql.String)},
		"code":    {Type: graphql.String},
	}
	if entityField != "" {
		fields[entityField] = &graphql.Field{Type: entity}
	}
	for k, f := range extra {
		fields[k] = f
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}
