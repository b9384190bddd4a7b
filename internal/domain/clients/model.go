package clients

import "time"

// Client es una solicitud de turno enviada desde el sitio público.
// Los campos opcionales son nil cuando no se enviaron (nunca "").
type Client struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	PetName   *string   `json:"pet_name"`
	PetType   *string   `json:"pet_type"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClient es lo que se persiste; ID y CreatedAt los asigna el store.
type NewClient struct {
	FirstName string
	LastName  string
	Phone     *string
	Email     *string
	PetName   *string
	PetType   *string
	Message   *string
}

// PetTypeStats: tipo de mascota -> cantidad de clientes.
type PetTypeStats map[string]int
