package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/FelixKahle/leafs/errors"
	"github.com/FelixKahle/leafs/version"
)

// moduleView is the per-module payload returned by the listing endpoints.
type moduleView struct {
	Name       string    `json:"name"`
	Loaded     bool      `json:"loaded"`
	InstanceID string    `json:"instance_id,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) info(c *gin.Context) {
	v := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"registered": s.mgr.RegisteredCount(),
		"loaded":     s.mgr.Count(),
	})
}

// listModules reports every registered module and its load state.
func (s *Server) listModules(c *gin.Context) {
	loaded := make(map[string]moduleView)
	for _, st := range s.mgr.Snapshot() {
		loaded[st.Name] = moduleView{
			Name:       st.Name,
			Loaded:     true,
			InstanceID: st.InstanceID,
			LoadedAt:   st.LoadedAt,
		}
	}

	views := make([]moduleView, 0, s.mgr.RegisteredCount())
	for _, name := range s.mgr.RegisteredNames() {
		if v, ok := loaded[name]; ok {
			views = append(views, v)
			continue
		}
		views = append(views, moduleView{Name: name})
	}

	RespondOK(c, views)
}

func (s *Server) getModule(c *gin.Context) {
	name := c.Param("name")

	info, ok := s.mgr.InfoByName(name)
	if !ok {
		RespondWithError(c, apperrors.NotRegistered(name))
		return
	}

	for _, st := range s.mgr.Snapshot() {
		if st.Name == name {
			RespondOK(c, moduleView{
				Name:       st.Name,
				Loaded:     true,
				InstanceID: st.InstanceID,
				LoadedAt:   st.LoadedAt,
			})
			return
		}
	}

	RespondOK(c, moduleView{Name: info.Name()})
}

func (s *Server) loadModule(c *gin.Context) {
	name := c.Param("name")

	info, ok := s.mgr.InfoByName(name)
	if !ok {
		RespondWithError(c, apperrors.NotRegistered(name))
		return
	}

	if err := s.mgr.Load(info); err != nil {
		RespondWithError(c, err)
		return
	}

	RespondOK(c, gin.H{"name": name, "loaded": true})
}

func (s *Server) unloadModule(c *gin.Context) {
	name := c.Param("name")

	info, ok := s.mgr.InfoByName(name)
	if !ok {
		RespondWithError(c, apperrors.NotRegistered(name))
		return
	}

	if err := s.mgr.Unload(info); err != nil {
		RespondWithError(c, err)
		return
	}

	RespondOK(c, gin.H{"name": name, "loaded": false})
}
