package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/universeapp/universe/internal/models"
)

// Thin CRUD surface over the repository. Every mutation publishes an event
// on the repository side, which keeps the vector cache and keyword indexes
// in step without the handlers knowing about either.

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var l models.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.repo.CreateListing(r.Context(), &l); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	l, err := s.repo.GetListing(r.Context(), id)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var l models.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l.ID = id
	if err := s.repo.UpdateListing(r.Context(), &l); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.DeleteListing(r.Context(), id); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var it models.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.repo.CreateItem(r.Context(), &it); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, it)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	it, err := s.repo.GetItem(r.Context(), id)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var it models.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it.ID = id
	if err := s.repo.UpdateItem(r.Context(), &it); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.DeleteItem(r.Context(), id); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var g models.StudyGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.repo.CreateStudyGroup(r.Context(), &g); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	g, err := s.repo.GetStudyGroup(r.Context(), id)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var g models.StudyGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g.ID = id
	if err := s.repo.UpdateStudyGroup(r.Context(), &g); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.DeleteStudyGroup(r.Context(), id); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	g, err := s.repo.GetStudyGroup(r.Context(), groupID)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	if g.IsFull() {
		s.respondError(w, http.StatusConflict, "group is full")
		return
	}
	if err := s.repo.AddGroupMember(r.Context(), groupID, userID); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.logger.Debug("user joined group", zap.Int64("group_id", groupID), zap.Int64("user_id", userID))
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "joined"})
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := s.repo.RemoveGroupMember(r.Context(), groupID, userID); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := s.repo.CreateProfile(r.Context(), &p); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	p, err := s.repo.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	existing, err := s.repo.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = existing.ID
	p.UserID = userID
	if err := s.repo.UpdateProfile(r.Context(), &p); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpsertRoommateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var rp models.RoommateProfile
	if err := json.NewDecoder(r.Body).Decode(&rp); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rp.UserID = userID
	if err := s.repo.UpsertRoommateProfile(r.Context(), &rp); err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rp)
}

func (s *Server) handleGetRoommateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	rp, err := s.repo.GetRoommateProfile(r.Context(), userID)
	if err != nil {
		s.respondRepoError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rp)
}
