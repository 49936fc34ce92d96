package address

// Address is the shipping address frozen onto an order.
type Address struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	Landmark     *string `json:"landmark,omitempty"`
}
