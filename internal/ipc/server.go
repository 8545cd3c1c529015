package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"reelgate/internal/api"
	"reelgate/internal/daemon"
	"reelgate/internal/logging"
	"reelgate/internal/rules"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Reelgate", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.WithComponent(s.logger, "ipc")
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DataDir = status.DataDir
	resp.LockPath = status.LockFilePath
	resp.RuleCount = status.RuleCount
	resp.BatchCount = status.BatchCount
	resp.ErrorScenes = status.ErrorScenes
	return nil
}

func (s *service) FilterList(_ FilterListRequest, resp *FilterListResponse) error {
	list, err := s.daemon.Rules().List(s.ctx)
	if err != nil {
		return err
	}
	resp.Rules = api.FromRules(list)
	return nil
}

func (s *service) FilterAdd(_ FilterAddRequest, resp *FilterAddResponse) error {
	rule, err := s.daemon.Rules().Add(s.ctx)
	if err != nil {
		return err
	}
	resp.Rule = api.FromRule(*rule)
	s.log().Info("filter rule added",
		logging.String(logging.FieldEventType, "filter_add"),
		logging.String("rule_id", rule.ID))
	return nil
}

func (s *service) FilterUpdate(req FilterUpdateRequest, resp *FilterUpdateResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("filter update requires a rule id")
	}
	params := rules.UpdateParams{
		Pattern: req.Pattern,
		Enabled: req.Enabled,
	}
	if req.Type != nil {
		parsed, ok := rules.ParseType(*req.Type)
		if !ok {
			return fmt.Errorf("unknown rule type %q", *req.Type)
		}
		params.Type = &parsed
	}
	if req.Mode != nil {
		parsed, ok := rules.ParseMode(*req.Mode)
		if !ok {
			return fmt.Errorf("unknown rule mode %q", *req.Mode)
		}
		params.Mode = &parsed
	}

	rule, err := s.daemon.Rules().Update(s.ctx, req.ID, params)
	if err != nil {
		return err
	}
	resp.Rule = api.FromRule(*rule)
	if req.Pattern != nil {
		if patternErr := rules.ValidatePattern(*req.Pattern); patternErr != nil {
			resp.Warning = fmt.Sprintf("pattern does not compile and will be skipped: %v", patternErr)
		}
	}
	return nil
}

func (s *service) FilterToggle(req FilterToggleRequest, resp *FilterToggleResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("filter toggle requires a rule id")
	}
	rule, err := s.daemon.Rules().Toggle(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Rule = api.FromRule(*rule)
	return nil
}

func (s *service) FilterDelete(req FilterDeleteRequest, resp *FilterDeleteResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("filter delete requires a rule id")
	}
	if err := s.daemon.Rules().Delete(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Deleted = true
	return nil
}

func (s *service) FilterReset(_ FilterResetRequest, resp *FilterResetResponse) error {
	if err := s.daemon.Rules().ResetAll(s.ctx); err != nil {
		return err
	}
	resp.Reset = true
	s.log().Info("filter rules reset",
		logging.String(logging.FieldEventType, "filter_reset"))
	return nil
}

func (s *service) BatchList(_ BatchListRequest, resp *BatchListResponse) error {
	list, err := s.daemon.Batches().List(s.ctx)
	if err != nil {
		return err
	}
	resp.Batches = api.FromBatches(list)
	return nil
}

func (s *service) BatchAdd(req BatchAddRequest, resp *BatchAddResponse) error {
	page := strings.TrimSpace(req.Page)
	if page == "" {
		return errors.New("batch add requires a catalog page")
	}
	s.log().Debug("batch add requested", logging.String("page", page))
	created, err := s.daemon.Orchestrator().AddBatch(s.ctx, page)
	if err != nil {
		return err
	}
	resp.Batch = api.FromBatch(*created)
	return nil
}

func (s *service) SceneAdd(req SceneAddRequest, resp *SceneAddResponse) error {
	stashID := strings.TrimSpace(req.StashID)
	if stashID == "" {
		return errors.New("scene add requires a stash id")
	}
	created, err := s.daemon.Orchestrator().AddSingle(s.ctx, stashID)
	if err != nil {
		return err
	}
	resp.Batch = api.FromBatch(*created)
	return nil
}

func (s *service) SceneRetry(req SceneRetryRequest, resp *SceneRetryResponse) error {
	if req.BatchID == "" || req.StashID == "" {
		return errors.New("scene retry requires batch and stash ids")
	}
	if err := s.daemon.Orchestrator().Retry(s.ctx, req.BatchID, req.StashID); err != nil {
		return err
	}
	resp.Queued = true
	return nil
}

func (s *service) RetryAll(_ RetryAllRequest, resp *RetryAllResponse) error {
	queued, err := s.daemon.Orchestrator().RetryAll(s.ctx)
	if err != nil {
		return err
	}
	resp.Queued = queued
	s.log().Info("error scenes requeued",
		logging.String(logging.FieldEventType, "retry_all"),
		logging.Int("queued", queued))
	return nil
}

func (s *service) BatchCancel(req BatchCancelRequest, resp *BatchCancelResponse) error {
	if req.BatchID == "" {
		return errors.New("batch cancel requires a batch id")
	}
	if err := s.daemon.Orchestrator().Cancel(s.ctx, req.BatchID); err != nil {
		return err
	}
	resp.Cancelled = true
	return nil
}

func (s *service) SceneUndo(req SceneUndoRequest, resp *SceneUndoResponse) error {
	if req.BatchID == "" || req.StashID == "" {
		return errors.New("scene undo requires batch and stash ids")
	}
	if err := s.daemon.Orchestrator().Undo(s.ctx, req.BatchID, req.StashID); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) BatchClear(_ BatchClearRequest, resp *BatchClearResponse) error {
	if err := s.daemon.Batches().ClearAll(s.ctx); err != nil {
		return err
	}
	resp.Cleared = true
	s.log().Info("batch history cleared",
		logging.String(logging.FieldEventType, "batch_clear"))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
