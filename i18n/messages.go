package i18n

import (
	"golang.org/x/text/language"
)

// Message keys.
const (
	MsgAddedToCart        = "cart.added"
	MsgCartCleared        = "cart.cleared"
	MsgEmptyCart          = "cart.empty"
	MsgVariantUnavailable = "cart.variant_unavailable"
	MsgOrderPlaced        = "checkout.order_placed"
	MsgUnauthenticated    = "auth.unauthenticated"
	MsgForbidden          = "auth.forbidden"
	MsgLoggedOut          = "auth.logged_out"
	MsgNotFound           = "error.not_found"
	MsgInvalidRequest     = "error.invalid_request"
	MsgConflict           = "error.conflict"
	MsgBackendUnavailable = "error.backend_unavailable"
	MsgBackendFailed      = "error.backend_failed"
	MsgInternal           = "error.internal"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		MsgAddedToCart:        "Added to cart",
		MsgCartCleared:        "Cart cleared",
		MsgEmptyCart:          "Your cart is empty",
		MsgVariantUnavailable: "This product variant is unavailable",
		MsgOrderPlaced:        "Order placed successfully",
		MsgUnauthenticated:    "Please sign in to continue",
		MsgForbidden:          "You do not have permission to do that",
		MsgLoggedOut:          "You have been signed out",
		MsgNotFound:           "Not found",
		MsgInvalidRequest:     "Invalid request",
		MsgConflict:           "The request conflicts with the current state",
		MsgBackendUnavailable: "The service is temporarily unavailable, please try again",
		MsgBackendFailed:      "Something went wrong, please try again",
		MsgInternal:           "Internal server error",
	},
	language.Vietnamese: {
		MsgAddedToCart:        "Đã thêm vào giỏ hàng",
		MsgCartCleared:        "Đã xóa giỏ hàng",
		MsgEmptyCart:          "Giỏ hàng của bạn đang trống",
		MsgVariantUnavailable: "Phiên bản sản phẩm này hiện không có sẵn",
		MsgOrderPlaced:        "Đặt hàng thành công",
		MsgUnauthenticated:    "Vui lòng đăng nhập để tiếp tục",
		MsgForbidden:          "Bạn không có quyền thực hiện thao tác này",
		MsgLoggedOut:          "Bạn đã đăng xuất",
		MsgNotFound:           "Không tìm thấy",
		MsgInvalidRequest:     "Yêu cầu không hợp lệ",
		MsgConflict:           "Yêu cầu xung đột với trạng thái hiện tại",
		MsgBackendUnavailable: "Dịch vụ tạm thời không khả dụng, vui lòng thử lại",
		MsgBackendFailed:      "Đã có lỗi xảy ra, vui lòng thử lại",
		MsgInternal:           "Lỗi máy chủ nội bộ",
	},
}
