package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`              // 业务错误码（0表示成功）
	Message string      `json:"message,omitempty"` // 提示信息
	Data    interface{} `json:"data"`              // 实际数据（可能为空对象 {}）
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    apperrors.Success,
		Data:    data,
	})
}

// Error 错误响应，code 为业务错误码
func Error(c *gin.Context, code int, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, apperrors.ErrInvalidParams, message, nil)
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, apperrors.ErrNotFound, message, nil)
}

// TooManyRequests 429 错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, apperrors.ErrTooManyRequests, message, nil)
}

// HandleError 统一错误处理（使用AppError）
func HandleError(c *gin.Context, err error) {
	HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData 错误响应同时保留部分结果（例如失败的抽取结果）
func HandleErrorWithData(c *gin.Context, err error, data interface{}) {
	if err == nil {
		return
	}
	code := apperrors.ExtractCode(err)
	Error(c, code, apperrors.FormatError(code, apperrors.GetDetails(err)), data)
}
