package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Msg: "ok", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: 0, Msg: "ok", Data: data})
}

func Error(c *gin.Context, status int, code int, message string) {
	ErrorWithData(c, status, code, message, nil)
}

func ErrorWithData(c *gin.Context, status int, code int, message string, data interface{}) {
	c.JSON(status, Body{Code: code, Msg: message, Data: data})
}
