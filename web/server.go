package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"goalscan-service/config"
	"goalscan-service/services"
)

type Server struct {
	config      *config.Config
	db          *sql.DB
	wsHub       *Hub
	resultStore *services.ResultStore
	httpServer  *http.Server
	upgrader    websocket.Upgrader
}

func NewServer(cfg *config.Config, db *sql.DB, hub *Hub) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		wsHub:       hub,
		resultStore: services.NewResultStore(db),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()

	// API路由
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/scores", s.handleGetScores).Methods("GET")
	api.HandleFunc("/fixtures/{fixture_id}/scores", s.handleGetFixtureScores).Methods("GET")
	api.HandleFunc("/scanner/matches", s.handleGetScannerMatches).Methods("GET")
	api.HandleFunc("/stats", s.handleGetStats).Methods("GET")

	// 管理接口
	api.HandleFunc("/admin/tables", s.handleGetTableStats).Methods("GET")
	api.HandleFunc("/admin/cleanup", s.handleManualCleanup).Methods("POST")

	// WebSocket路由
	router.HandleFunc("/ws", s.handleWebSocket)

	// 静态文件(如果需要)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	// CORS配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleGetScores 获取最近的评分结果
func (s *Server) handleGetScores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	minTotal, _ := strconv.ParseFloat(query.Get("min_total"), 64)
	if minTotal < 0 {
		minTotal = 0
	}

	scores, err := s.resultStore.GetRecentScores(limit, offset, minTotal)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"scores": scores,
		"limit":  limit,
		"offset": offset,
	})
}

// handleGetFixtureScores 获取一场比赛的评分历史
func (s *Server) handleGetFixtureScores(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fixtureID, err := strconv.Atoi(vars["fixture_id"])
	if err != nil {
		http.Error(w, "invalid fixture_id", http.StatusBadRequest)
		return
	}

	scores, err := s.resultStore.GetFixtureScores(fixtureID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fixture_id": fixtureID,
		"scores":     scores,
	})
}

// handleGetScannerMatches 获取扫描命中的比赛
func (s *Server) handleGetScannerMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	matches, err := s.resultStore.GetScannerMatches(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"matches": matches,
	})
}

// handleGetStats 获取统计信息
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.resultStore.GetStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleWebSocket WebSocket连接处理
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:        s.wsHub,
		conn:       conn,
		send:       make(chan []byte, 256),
		types:      make(map[string]bool),
		fixtureIDs: make(map[int]bool),
	}

	client.hub.register <- client

	// 发送欢迎消息
	welcomeMsg := &WSMessage{
		Type: "connected",
		Data: map[string]interface{}{
			"message": "Connected to GoalScan WebSocket",
			"time":    time.Now().Unix(),
		},
	}
	welcomeData, _ := json.Marshal(welcomeMsg)
	client.send <- welcomeData

	go client.writePump()
	go client.readPump()
}
