package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/utils"
)

// HabitView is a habit plus its display-only derivations
type HabitView struct {
	models.Habit
	ProgressPercent int `json:"progressPercent"`
	DaysRemaining   int `json:"daysRemaining"`
}

func newHabitView(h models.Habit) HabitView {
	return HabitView{Habit: h, ProgressPercent: h.ProgressPercent(), DaysRemaining: h.DaysRemaining()}
}

// MiniMissionView is a mission plus its countdown at request time
type MiniMissionView struct {
	models.MiniMission
	Countdown engine.CountdownView `json:"countdown"`
}

type toggleRequest struct {
	Day string `json:"day"`
}

type extendRequest struct {
	Minutes int `json:"minutes"`
}

type completeResponse struct {
	Mission   MiniMissionView `json:"mission"`
	XPAwarded int             `json:"xpAwarded"`
}

func (s *Server) missionView(m models.MiniMission) MiniMissionView {
	return MiniMissionView{MiniMission: m, Countdown: engine.Countdown(m, s.engine.Now())}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleXP(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.engine.Level())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.engine.Stats())
}

func validationStatus(err error) int {
	if errors.Is(err, engine.ErrEmptyTitle) || errors.Is(err, engine.ErrInvalidMode) || errors.Is(err, engine.ErrInvalidStartMode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	habits := s.engine.Habits()
	views := make([]HabitView, len(habits))
	for i, h := range habits {
		views[i] = newHabitView(h)
	}
	respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in engine.HabitInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h, err := s.engine.CreateHabit(in)
	if err != nil {
		respondWithError(w, validationStatus(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, newHabitView(h))
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	h, ok := s.engine.GetHabit(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "habit not found")
		return
	}
	respondWithJSON(w, http.StatusOK, newHabitView(h))
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if !s.engine.DeleteHabit(mux.Vars(r)["id"]) {
		respondWithError(w, http.StatusNotFound, "habit not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Day == "" {
		req.Day = utils.DayKey(s.engine.Now(), s.engine.Location())
	}

	if _, ok := s.engine.GetHabit(id); !ok {
		respondWithError(w, http.StatusNotFound, "habit not found")
		return
	}
	if !s.engine.ToggleCompletion(id, req.Day) {
		respondWithError(w, http.StatusConflict, "only today and yesterday can be toggled")
		return
	}
	h, _ := s.engine.GetHabit(id)
	respondWithJSON(w, http.StatusOK, newHabitView(h))
}

func (s *Server) handleResetHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.engine.ResetHabit(id) {
		respondWithError(w, http.StatusNotFound, "habit not found")
		return
	}
	h, _ := s.engine.GetHabit(id)
	respondWithJSON(w, http.StatusOK, newHabitView(h))
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions := s.engine.MiniMissions()
	views := make([]MiniMissionView, len(missions))
	for i, m := range missions {
		views[i] = s.missionView(m)
	}
	respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var in engine.MiniMissionInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	m, err := s.engine.CreateMiniMission(in)
	if err != nil {
		respondWithError(w, validationStatus(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, s.missionView(m))
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	m, ok := s.engine.GetMiniMission(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "mini mission not found")
		return
	}
	respondWithJSON(w, http.StatusOK, s.missionView(m))
}

func (s *Server) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	if !s.engine.DeleteMiniMission(mux.Vars(r)["id"]) {
		respondWithError(w, http.StatusNotFound, "mini mission not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// missionTransition runs op and answers with the updated mission. A rejected
// transition on an existing mission is a conflict.
func (s *Server) missionTransition(w http.ResponseWriter, id string, op func() bool, conflict string) (models.MiniMission, bool) {
	if _, ok := s.engine.GetMiniMission(id); !ok {
		respondWithError(w, http.StatusNotFound, "mini mission not found")
		return models.MiniMission{}, false
	}
	if !op() {
		respondWithError(w, http.StatusConflict, conflict)
		return models.MiniMission{}, false
	}
	m, _ := s.engine.GetMiniMission(id)
	return m, true
}

func (s *Server) handleStartMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, ok := s.missionTransition(w, id, func() bool { return s.engine.StartMiniMission(id) }, "mission already completed")
	if ok {
		respondWithJSON(w, http.StatusOK, s.missionView(m))
	}
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var awarded int
	m, ok := s.missionTransition(w, id, func() bool {
		var done bool
		awarded, done = s.engine.CompleteMiniMission(id)
		return done
	}, "mission already completed")
	if ok {
		respondWithJSON(w, http.StatusOK, completeResponse{Mission: s.missionView(m), XPAwarded: awarded})
	}
}

func (s *Server) handleExtendMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req extendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Minutes <= 0 {
		respondWithError(w, http.StatusBadRequest, "minutes must be positive")
		return
	}
	m, ok := s.missionTransition(w, id, func() bool { return s.engine.ExtendMiniMission(id, req.Minutes) }, "only running missions can be extended")
	if ok {
		respondWithJSON(w, http.StatusOK, s.missionView(m))
	}
}

func (s *Server) handleCancelMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, ok := s.missionTransition(w, id, func() bool { return s.engine.CancelMiniMission(id) }, "mission already completed")
	if ok {
		respondWithJSON(w, http.StatusOK, s.missionView(m))
	}
}
