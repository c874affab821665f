package delivery

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Entregas-api/internal/domain"
	allocation "github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// Session flujo de entrega abierto para un cliente. Todo el estado vive en memoria y se descarta
// al cerrar o tras un envío exitoso; mu serializa las operaciones sobre la sesión.
type Session struct {
	mu sync.Mutex

	ID        string
	CompanyID string
	UserID    string
	Conn      entity.LedgerConnection
	Customer  string
	Date      time.Time
	Reference string
	Narration string

	Settings entity.DeliverySettings
	Engine   *allocation.Engine
	Orders   []entity.Order
	Ledger   allocation.Ledger

	snapshot *allocation.Ledger
	lastUsed time.Time
	// sub-unidades por ítem en el orden en que las informó el sistema contable
	subUnitOrder map[string][]entity.SubUnit
}

// Order busca la línea de pedido por clave.
func (s *Session) Order(key string) (entity.Order, bool) {
	for _, o := range s.Orders {
		if o.Key() == key {
			return o, true
		}
	}
	return entity.Order{}, false
}

// Editing indica si hay una edición en curso con foto del libro guardada.
func (s *Session) Editing() bool { return s.snapshot != nil }

// SessionStore sesiones abiertas en memoria con vencimiento por inactividad.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore crea el almacén. ttl 0 desactiva el vencimiento.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: map[string]*Session{}, now: time.Now}
}

// Add registra la sesión y le asigna un ID nuevo.
func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.ID = uuid.New().String()
	s.lastUsed = st.now()
	st.sessions[s.ID] = s
}

// Get devuelve la sesión de la empresa; una vencida o de otra empresa no existe.
func (st *SessionStore) Get(companyID, id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.CompanyID != companyID {
		return nil, domain.ErrSessionNotFound
	}
	if st.expired(s) {
		delete(st.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	s.lastUsed = st.now()
	return s, nil
}

// Remove elimina la sesión.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Expired retira y devuelve los IDs de las sesiones vencidas.
func (st *SessionStore) Expired() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	var ids []string
	for id, s := range st.sessions {
		if st.expired(s) {
			ids = append(ids, id)
			delete(st.sessions, id)
		}
	}
	return ids
}

// Len cantidad de sesiones abiertas.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(s *Session) bool {
	return st.ttl > 0 && st.now().Sub(s.lastUsed) > st.ttl
}
