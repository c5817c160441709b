package handler

import (
	"fmt"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	validatorv10 "github.com/go-playground/validator/v10"
)

// newValidator returns a configured validator with struct-level
// validation registered for checkout requests.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(checkoutStructValidation, model.CheckoutRequest{})
	return v
}

// checkoutStructValidation cross-checks the client-computed totals
// against the cart lines: subtotal must equal the line sum and the total
// must equal subtotal + shipping - discount.
func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(model.CheckoutRequest)

	var sum int64
	for _, it := range req.Items {
		sum += int64(it.Quantity) * it.Price
	}

	if sum != req.Subtotal {
		sl.ReportError(req.Subtotal, "subtotal", "Subtotal", "subtotal_match_items",
			fmt.Sprintf("items sum %d != subtotal %d", sum, req.Subtotal))
	}

	if req.Subtotal+req.ShippingFee-req.DiscountAmount != req.TotalAmount {
		sl.ReportError(req.TotalAmount, "total", "TotalAmount", "total_match_parts",
			fmt.Sprintf("subtotal %d + shipping %d - discount %d != total %d",
				req.Subtotal, req.ShippingFee, req.DiscountAmount, req.TotalAmount))
	}
}

// validationErrorsToMap flattens validator errors into field messages.
func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
