package httpx

import (
	"time"

	"github.com/swiftcart/checkout/internal/order"
)

type checkoutRequest struct {
	Items    []lineItemDTO `json:"items"`
	Address  addressDTO    `json:"address"`
	Customer customerDTO   `json:"customer"`
}

type lineItemDTO struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
}

type addressDTO struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type customerDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type checkoutResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

type orderResponse struct {
	ID                string             `json:"id"`
	Status            string             `json:"status"`
	Items             []lineItemDTO      `json:"items"`
	Total             float64            `json:"total"`
	Date              string             `json:"date"`
	Address           addressDTO         `json:"address"`
	PaymentMethod     string             `json:"payment_method,omitempty"`
	EstimatedDelivery string             `json:"estimated_delivery,omitempty"`
	TrackingHistory   []trackingEventDTO `json:"tracking_history,omitempty"`
}

type trackingEventDTO struct {
	Status      string `json:"status"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type reconcileResponse struct {
	Outcome       string         `json:"outcome"`
	GatewayStatus string         `json:"gateway_status,omitempty"`
	Order         *orderResponse `json:"order,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		Items:         mapItems(o.Items),
		Total:         o.Total,
		Date:          o.Date.Format(time.RFC3339),
		PaymentMethod: o.PaymentMethod,
		Address: addressDTO{
			Name:    o.Address.Name,
			Line1:   o.Address.Line1,
			City:    o.Address.City,
			State:   o.Address.State,
			Pincode: o.Address.Pincode,
			Phone:   o.Address.Phone,
		},
	}
	if !o.EstimatedDelivery.IsZero() {
		resp.EstimatedDelivery = o.EstimatedDelivery.Format(time.RFC3339)
	}
	for _, ev := range o.TrackingHistory {
		resp.TrackingHistory = append(resp.TrackingHistory, trackingEventDTO{
			Status:      string(ev.Status),
			Date:        ev.Date.Format(time.RFC3339),
			Location:    ev.Location,
			Description: ev.Description,
		})
	}
	return resp
}

func mapItems(items []order.LineItem) []lineItemDTO {
	out := make([]lineItemDTO, len(items))
	for i, it := range items {
		out[i] = lineItemDTO{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
		}
	}
	return out
}
