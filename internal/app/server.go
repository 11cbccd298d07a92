package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Server управляет жизненным циклом HTTP сервера
type Server struct {
	echo            *echo.Echo
	addr            string
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer создаёт новый сервер
func NewServer(e *echo.Echo, addr string, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	e.HideBanner = true
	e.HidePort = true

	return &Server{
		echo:            e,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run слушает addr до отмены ctx, затем корректно останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
