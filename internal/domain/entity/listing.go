package entity

import "time"

// Listing is the display metadata attached to a conversation opened about a
// specific item. The catalog service owns listings; the messaging core only
// reads them and treats the id as opaque.
type Listing struct {
	ID        string    `json:"id" firestore:"id"`
	SellerID  string    `json:"seller_id" firestore:"sellerId"`
	Title     string    `json:"title" firestore:"title"`
	Price     float64   `json:"price" firestore:"price"`
	ImageURL  string    `json:"image_url,omitempty" firestore:"imageURL,omitempty"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
