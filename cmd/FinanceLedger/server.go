package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/FinanceLedger/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceLedger/internal/log"
)

type Response struct {
	Message string `json:"message"`
}

type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router             *http.ServeMux
	logger             *log.Logger
	authMiddleware     func(http.Handler) http.Handler
	health             HealthChecker
	transactionHandler *interfaces.TransactionHandler
	balanceHandler     *interfaces.BalanceHandler
	accountHandler     *interfaces.AccountHandler
	categoryHandler    *interfaces.CategoryHandler
}

func NewServer(
	logger *log.Logger,
	authMiddleware func(http.Handler) http.Handler,
	health HealthChecker,
	transactionHandler *interfaces.TransactionHandler,
	balanceHandler *interfaces.BalanceHandler,
	accountHandler *interfaces.AccountHandler,
	categoryHandler *interfaces.CategoryHandler,
) *Server {
	return &Server{
		router:             http.NewServeMux(),
		logger:             logger,
		authMiddleware:     authMiddleware,
		health:             health,
		transactionHandler: transactionHandler,
		balanceHandler:     balanceHandler,
		accountHandler:     accountHandler,
		categoryHandler:    categoryHandler,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.health.Health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) protected(handler http.HandlerFunc) http.Handler {
	return s.authMiddleware(handler)
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()

	// REFERENCE DATA
	protectedRoutes.Handle("GET /api/protected/accounts", s.protected(s.accountHandler.GetAccounts))
	protectedRoutes.Handle("GET /api/protected/accounts/{accountID}", s.protected(s.accountHandler.GetAccount))
	protectedRoutes.Handle("GET /api/protected/categories", s.protected(s.categoryHandler.GetCategories))

	// TRANSACTIONS
	protectedRoutes.Handle("GET /api/protected/transactions", s.protected(s.transactionHandler.GetTransactions))
	protectedRoutes.Handle("POST /api/protected/transactions", s.protected(s.transactionHandler.RecordTransaction))
	protectedRoutes.Handle("GET /api/protected/transactions/{transactionID}", s.protected(s.transactionHandler.GetTransaction))
	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}", s.protected(s.transactionHandler.AmendTransaction))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}", s.protected(s.transactionHandler.DeleteTransaction))

	// BALANCES
	protectedRoutes.Handle("GET /api/protected/balances", s.protected(s.balanceHandler.GetBalances))
	protectedRoutes.Handle("GET /api/protected/balances/verify", s.protected(s.balanceHandler.VerifyBalances))
	protectedRoutes.Handle("GET /api/protected/balances/{accountID}", s.protected(s.balanceHandler.GetBalance))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func (s *Server) Handler() http.Handler {
	return log.Middleware(s.logger)(s.router)
}
