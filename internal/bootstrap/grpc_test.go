package bootstrap

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/slotbooking/api"
	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/repository/memory"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func newGatewayRouter(t *testing.T) (http.Handler, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore(time.Second)
	host := uuid.New()
	store.PutMember(domain.Member{ID: host, Username: "host", Role: domain.RoleHost})
	store.PutCalendar(domain.Calendar{HostID: host})
	slotSvc := timeslots.NewTimeSlotService(store.TimeSlots(), store.Members(), store.Calendars())
	bookingSvc := booking.NewBookingService(store.Bookings(), store.Members(),
		booking.WithClock(func() time.Time { return time.Date(2025, time.May, 30, 9, 0, 0, 0, time.UTC) }))

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(zap.NewNop(), slotSvc, bookingSvc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gw, err := NewGateway(conn)
	require.NoError(t, err)
	router := gin.New()
	router.POST("/rpc/v1/:method", gin.WrapH(gw))
	return router, host
}

func postRPC(t *testing.T, h http.Handler, method string, member uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc/v1/"+method, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if member != uuid.Nil {
		req.Header.Set(api.MemberHeader, member.String())
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGateway_ForwardsCalls(t *testing.T) {
	h, host := newGatewayRouter(t)

	slot := `{"start_time":"09:00","end_time":"10:00","weekdays":[1]}`
	w := postRPC(t, h, "CreateTimeSlot", host, slot)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "09:00", created["start_time"])
	assert.Equal(t, host.String(), created["host_id"])

	w = postRPC(t, h, "CreateTimeSlot", host, slot)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "overlaps")

	w = postRPC(t, h, "ListMyTimeSlots", host, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}

func TestGateway_Errors(t *testing.T) {
	h, host := newGatewayRouter(t)

	tests := []struct {
		name   string
		method string
		member uuid.UUID
		body   string
		want   int
	}{
		{"missing member", "ListMyTimeSlots", uuid.Nil, "", http.StatusUnauthorized},
		{"malformed body", "CreateTimeSlot", host, "[1,2", http.StatusBadRequest},
		{"guest", "CreateTimeSlot", uuid.New(), `{"start_time":"09:00","end_time":"10:00","weekdays":[1]}`, http.StatusForbidden},
		{"unknown booking", "GetBooking", host, `{"id":7}`, http.StatusNotFound},
		{"unknown method", "DropTables", host, "", http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRPC(t, h, tt.method, tt.member, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
