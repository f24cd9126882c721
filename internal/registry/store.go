// Package registry mantiene el mapeo de session_id a estado de continuacion.
// Es la unica estructura mutable compartida del servicio; un miss nunca es un
// error, significa "arrancar sesion nueva".
package registry

import (
	"context"

	"claude-gateway/internal/domain"
)

// Store define la interfaz del registro de sesiones.
type Store interface {
	// Get devuelve la sesion y true si existe; false si no (sin error).
	Get(ctx context.Context, sessionID string) (domain.Session, bool, error)

	// Put inserta o sobreescribe; gana la ultima escritura.
	Put(ctx context.Context, session domain.Session) error

	// Delete elimina la sesion; borrar un id inexistente no es error.
	Delete(ctx context.Context, sessionID string) error
}
