package auth

// Identity es lo que devuelve el Auth Provider tras un login exitoso.
type Identity struct {
	UserID string
	Email  string

	// AccessToken del proveedor; se guarda en la sesión para poder invalidarlo en logout.
	AccessToken string
}
