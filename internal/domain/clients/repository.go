package clients

import "context"

type Repository interface {
	// Insert persiste y devuelve el registro con ID y CreatedAt asignados por el store.
	Insert(ctx context.Context, in NewClient) (Client, error)
	// ListNewestFirst devuelve todos los clientes ordenados por created_at desc.
	ListNewestFirst(ctx context.Context) ([]Client, error)
	Count(ctx context.Context) (int, error)
	// ListPetTypes devuelve el pet_type de cada cliente que lo tenga (no nulos).
	ListPetTypes(ctx context.Context) ([]string, error)
}

// Notifier avisa a la clínica de una nueva solicitud. Best-effort.
type Notifier interface {
	NotifyNewClient(ctx context.Context, c Client) error
}
