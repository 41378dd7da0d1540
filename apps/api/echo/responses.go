package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type (
	itemResponse struct {
		Data interface{} `json:"data"`
	}

	collectionLinks struct {
		Self string `json:"self"`
	}

	collectionResponse struct {
		Data  interface{}     `json:"data"`
		Meta  map[string]int  `json:"meta"`
		Links collectionLinks `json:"links"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

func sendItem(ctx echo.Context, code int, obj interface{}) error {
	return ctx.JSON(code, itemResponse{Data: obj})
}

// sendCollection wraps items with their count under meta.<totalKey>.
func sendCollection(ctx echo.Context, items interface{}, total int, totalKey string) error {
	req := ctx.Request()
	return ctx.JSON(http.StatusOK, collectionResponse{
		Data:  items,
		Meta:  map[string]int{totalKey: total},
		Links: collectionLinks{Self: ctx.Scheme() + "://" + req.Host + req.URL.Path},
	})
}

func sendMessage(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusOK, messageResponse{Message: msg})
}
