package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

func idArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func requiredID() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: nonNull(graphql.ID)}
}

func (b *builder) queryType() *graphql.Object {
	pinFilter := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PinFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"search": {Type: graphql.String},
			"tags":   {Type: graphql.NewList(nonNull(graphql.String))},
			"limit":  {Type: graphql.Int},
			"offset": {Type: graphql.Int},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": {
				Type: b.user,
				Resolve: query(b.log, "me", func(p graphql.ResolveParams) (interface{}, error) {
					id := viewer(p)
					if id == "" {
						return nil, nil
					}
					return b.svc.Users.GetUser(p.Context, id)
				}),
			},
			"user": {
				Type: b.user,
				Args: graphql.FieldConfigArgument{"username": {Type: nonNull(graphql.String)}},
				Resolve: query(b.log, "user", func(p graphql.ResolveParams) (interface{}, error) {
					username, _ := p.Args["username"].(string)
					return b.svc.Users.GetUserByUsername(p.Context, username)
				}),
			},
			"board": {
				Type: b.board,
				Args: graphql.FieldConfigArgument{"id": requiredID()},
				Resolve: query(b.log, "board", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Boards.GetBoard(p.Context, viewer(p), idArg(p, "id"))
				}),
			},
			"pin": {
				Type: b.pin,
				Args: graphql.FieldConfigArgument{"id": requiredID()},
				Resolve: query(b.log, "pin", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Pins.GetPin(p.Context, viewer(p), idArg(p, "id"))
				}),
			},
			"pins": {
				Type:        listOf(b.pin),
				Description: "The feed, newest first.",
				Args:        graphql.FieldConfigArgument{"filter": {Type: pinFilter}},
				Resolve: query(b.log, "pins", func(p graphql.ResolveParams) (interface{}, error) {
					var f pinFilterInput
					if raw, ok := p.Args["filter"]; ok && raw != nil {
						if err := decodeInput(raw, &f); err != nil {
							return nil, err
						}
					}
					return b.svc.Pins.ListPins(p.Context, ports.ListPinsInput{
						ViewerID: viewer(p),
						Search:   f.Search,
						Tags:     f.Tags,
						Limit:    f.Limit,
						Offset:   f.Offset,
					})
				}),
			},
			"pinsByUser": {
				Type: listOf(b.pin),
				Args: graphql.FieldConfigArgument{"userId": requiredID()},
				Resolve: query(b.log, "pinsByUser", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Pins.PinsByUser(p.Context, viewer(p), idArg(p, "userId"))
				}),
			},
			"boardsByUser": {
				Type: listOf(b.board),
				Args: graphql.FieldConfigArgument{"userId": requiredID()},
				Resolve: query(b.log, "boardsByUser", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Boards.BoardsByUser(p.Context, viewer(p), idArg(p, "userId"))
				}),
			},
			"pinsByUserBoards": {
				Type: listOf(b.boardWithPins),
				Args: graphql.FieldConfigArgument{"userId": requiredID()},
				Resolve: query(b.log, "pinsByUserBoards", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Boards.PinsByUserBoards(p.Context, viewer(p), idArg(p, "userId"))
				}),
			},
			"comments": {
				Type: listOf(b.comment),
				Args: graphql.FieldConfigArgument{"pinId": requiredID()},
				Resolve: query(b.log, "comments", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Comments.ListComments(p.Context, viewer(p), idArg(p, "pinId"))
				}),
			},
		},
	})
}

func (b *builder) mutationType() *graphql.Object {
	createBoard := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateBoardInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       {Type: nonNull(graphql.String)},
			"description": {Type: graphql.String},
			"isPrivate":   {Type: graphql.Boolean},
		},
	})
	updateBoard := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateBoardInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":          {Type: nonNull(graphql.ID)},
			"title":       {Type: graphql.String},
			"description": {Type: graphql.String},
			"isPrivate":   {Type: graphql.Boolean},
		},
	})
	createPin := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreatePinInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       {Type: graphql.String},
			"description": {Type: graphql.String},
			"link":        {Type: graphql.String},
			"tags":        {Type: graphql.NewList(nonNull(graphql.String))},
			"imagePath":   {Type: nonNull(graphql.String)},
			"imageWidth":  {Type: nonNull(graphql.Int)},
			"imageHeight": {Type: nonNull(graphql.Int)},
			"boardId":     {Type: graphql.ID},
		},
	})
	updatePin := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdatePinInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":             {Type: nonNull(graphql.ID)},
			"title":          {Type: graphql.String},
			"description":    {Type: graphql.String},
			"link":           {Type: graphql.String},
			"tags":           {Type: graphql.NewList(nonNull(graphql.String))},
			"currentBoardId": {Type: graphql.ID},
			"newBoardId":     {Type: graphql.ID},
		},
	})
	addComment := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AddCommentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"pinId": {Type: nonNull(graphql.ID)},
			"text":  {Type: nonNull(graphql.String)},
		},
	})
	deleteComment := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "DeleteCommentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"pinId":     {Type: nonNull(graphql.ID)},
			"commentId": {Type: nonNull(graphql.ID)},
		},
	})

	result := envelope("Result", "", nil, nil)
	boardResult := envelope("BoardResult", "board", b.board, nil)
	pinResult := envelope("PinResult", "pin", b.pin, graphql.Fields{
		"orphaned": {Type: graphql.Boolean, Description: "Set by deletePinFromBoard when the pin is left without boards."},
	})
	commentResult := envelope("CommentResult", "comment", b.comment, nil)
	deleteBoardResult := envelope("DeleteBoardResult", "", nil, graphql.Fields{
		"boardId":      {Type: graphql.ID},
		"detachedPins": {Type: graphql.Int},
		"purgedPins":   {Type: graphql.Int},
	})

	m := func(name, entity string, fn resolveFunc) graphql.FieldResolveFn {
		return mutation(b.log, name, entity, fn)
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createBoard": {
				Type: nonNull(boardResult),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(createBoard)}},
				Resolve: m("createBoard", "board", func(p graphql.ResolveParams) (interface{}, error) {
					var in createBoardInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return b.svc.Boards.CreateBoard(p.Context, ports.CreateBoardInput{
						ActorID:     viewer(p),
						Title:       in.Title,
						Description: in.Description,
						IsPrivate:   in.IsPrivate,
					})
				}),
			},
			"updateBoard": {
				Type: nonNull(boardResult),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(updateBoard)}},
				Resolve: m("updateBoard", "board", func(p graphql.ResolveParams) (interface{}, error) {
					var in updateBoardInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return b.svc.Boards.UpdateBoard(p.Context, ports.UpdateBoardInput{
						ActorID:     viewer(p),
						BoardID:     in.ID,
						Title:       in.Title,
						Description: in.Description,
						IsPrivate:   in.IsPrivate,
					})
				}),
			},
			"deleteBoard": {
				Type: nonNull(deleteBoardResult),
				Args: graphql.FieldConfigArgument{"boardId": requiredID()},
				Resolve: m("deleteBoard", "", func(p graphql.ResolveParams) (interface{}, error) {
					res, err := b.svc.Boards.DeleteBoard(p.Context, viewer(p), idArg(p, "boardId"))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"boardId":      res.BoardID,
						"detachedPins": res.DetachedPins,
						"purgedPins":   res.PurgedPins,
					}, nil
				}),
			},
			"createPin": {
				Type: nonNull(pinResult),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(createPin)}},
				Resolve: m("createPin", "pin", func(p graphql.ResolveParams) (interface{}, error) {
					var in createPinInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return b.svc.Pins.CreatePin(p.Context, ports.CreatePinInput{
						ActorID:     viewer(p),
						Title:       in.Title,
						Description: in.Description,
						Link:        in.Link,
						Tags:        in.Tags,
						ImagePath:   in.ImagePath,
						ImageWidth:  in.ImageWidth,
						ImageHeight: in.ImageHeight,
						BoardID:     in.BoardID,
					})
				}),
			},
			"updatePin": {
				Type: nonNull(pinResult),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(updatePin)}},
				Resolve: m("updatePin", "pin", func(p graphql.ResolveParams) (interface{}, error) {
					var in updatePinInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return b.svc.Pins.UpdatePin(p.Context, ports.UpdatePinInput{
						ActorID:        viewer(p),
						PinID:          in.ID,
						Title:          in.Title,
						Description:    in.Description,
						Link:           in.Link,
						Tags:           in.Tags,
						CurrentBoardID: in.CurrentBoardID,
						NewBoardID:     in.NewBoardID,
					})
				}),
			},
			"deletePin": {
				Type: nonNull(result),
				Args: graphql.FieldConfigArgument{"id": requiredID()},
				Resolve: m("deletePin", "", func(p graphql.ResolveParams) (interface{}, error) {
					return nil, b.svc.Pins.DeletePin(p.Context, viewer(p), idArg(p, "id"))
				}),
			},
			"savePinToBoard": {
				Type: nonNull(pinResult),
				Args: graphql.FieldConfigArgument{"pinId": requiredID(), "boardId": requiredID()},
				Resolve: m("savePinToBoard", "pin", func(p graphql.ResolveParams) (interface{}, error) {
					return b.svc.Pins.SavePinToBoard(p.Context, viewer(p), idArg(p, "pinId"), idArg(p, "boardId"))
				}),
			},
			"deletePinFromBoard": {
				Type: nonNull(pinResult),
				Args: graphql.FieldConfigArgument{"pinId": requiredID(), "boardId": requiredID()},
				Resolve: m("deletePinFromBoard", "", func(p graphql.ResolveParams) (interface{}, error) {
					pin, orphaned, err := b.svc.Pins.DeletePinFromBoard(p.Context, viewer(p), idArg(p, "pinId"), idArg(p, "boardId"))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"pin": pin, "orphaned": orphaned}, nil
				}),
			},
			"addComment": {
				Type: nonNull(commentResult),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(addComment)}},
				Resolve: m("addComment", "comment", func(p graphql.ResolveParams) (interface{}, error) {
					var in addCommentInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return b.svc.Comments.AddComment(p.Context, viewer(p), in.PinID, in.Text)
				}),
			},
			"deleteComment": {
				Type: nonNull(result),
				Args: graphql.FieldConfigArgument{"input": {Type: nonNull(deleteComment)}},
				Resolve: m("deleteComment", "", func(p graphql.ResolveParams) (interface{}, error) {
					var in deleteCommentInput
					if err := decodeInput(p.Args["input"], &in); err != nil {
						return nil, err
					}
					return nil, b.svc.Comments.DeleteComment(p.Context, viewer(p), in.PinID, in.CommentID)
				}),
			},
			"changePassword": {
				Type: nonNull(result),
				Args: graphql.FieldConfigArgument{
					"currentPassword": {Type: nonNull(graphql.String)},
					"newPassword":     {Type: nonNull(graphql.String)},
				},
				Resolve: m("changePassword", "", func(p graphql.ResolveParams) (interface{}, error) {
					current, _ := p.Args["currentPassword"].(string)
					next, _ := p.Args["newPassword"].(string)
					return nil, b.svc.Auth.ChangePassword(p.Context, viewer(p), current, next)
				}),
			},
			"deleteAccount": {
				Type: nonNull(result),
				Resolve: m("deleteAccount", "", func(p graphql.ResolveParams) (interface{}, error) {
					id := viewer(p)
					if id == "" {
						return nil, domain.ErrUnauthenticated
					}
					return nil, b.svc.Users.DeleteAccount(p.Context, id, id, false)
				}),
			},
		},
	})
}
