package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/slotbooking/api"
	"github.com/Domenick1991/slotbooking/config"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const swaggerSpec = "slotbooking.swagger.json"

// Run serves the HTTP API, plus gRPC and its JSON gateway when
// cfg.GRPC.Address is set, and blocks until ctx is cancelled or a server
// fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, slotSvc timeslots.TimeSlotUseCase, bookingSvc booking.BookingUseCase) error {
	log = logger.OrNop(log)
	router := NewRouter(cfg.HTTP, log, slotSvc, bookingSvc)
	errCh := make(chan error, 2)

	var grpcSrv *grpc.Server
	if cfg.GRPC.Address != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", cfg.GRPC.Address, err)
		}
		grpcSrv = NewGRPCServer(log, slotSvc, bookingSvc)
		go func() {
			log.Info("grpc server listening", zap.String("address", cfg.GRPC.Address))
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()

		conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			grpcSrv.Stop()
			return fmt.Errorf("dial grpc gateway: %w", err)
		}
		defer conn.Close()
		gw, err := NewGateway(conn)
		if err != nil {
			grpcSrv.Stop()
			return fmt.Errorf("register grpc gateway: %w", err)
		}
		router.POST("/rpc/v1/:method", gin.WrapH(gw))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		if grpcSrv != nil {
			grpcSrv.Stop()
		}
		_ = srv.Close()
		return err
	case <-ctx.Done():
		log.Info("shutting down servers")
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg config.HTTPConfig, log *zap.Logger, slotSvc timeslots.TimeSlotUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), requestTimeout(cfg.RequestTimeout()))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	api.NewTimeSlotHandler(slotSvc).Register(v1)
	bookings := api.NewBookingHandler(bookingSvc)
	bookings.Register(v1.Group("/bookings"))
	bookings.RegisterPublic(v1)

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerSpec))))
	}
	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("request", fields...)
			return
		}
		log.Debug("request", fields...)
	}
}

// requestTimeout bounds the request context unless the caller already set
// a deadline.
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		if _, ok := c.Request.Context().Deadline(); ok {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
