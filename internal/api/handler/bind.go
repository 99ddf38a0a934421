package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/d60-Lab/posts-api/pkg/response"
)

// bindStrictJSON 解析 JSON 请求体：拒绝未知字段、类型不符、尾随数据，随后按 binding 标签校验
func bindStrictJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return errors.New("empty request body")
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return binding.Validator.ValidateStruct(obj)
}

// bindFailed 请求体超限返回 413，其余一律按校验失败返回 400
func bindFailed(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.PayloadTooLarge(c, msgBodyTooLarge)
		return
	}
	response.BadRequest(c, msg)
}
