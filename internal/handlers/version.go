package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/pkg/utils"
)

// Version and Commit are injected at build time:
//
//	go build -ldflags "-X github.com/hospoda/shiftboard/internal/handlers.Version=1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

const (
	apiVersion  = "v1"
	serviceName = "hospoda-shiftboard"
)

// VersionHandler reports the build and the pub settings clients need to read
// the board correctly: shift dates are local to Timezone.
type VersionHandler struct {
	timezone string
	storage  string
}

func NewVersionHandler(timezone, storageBackend string) *VersionHandler {
	return &VersionHandler{timezone: timezone, storage: storageBackend}
}

type versionResponse struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	APIVersion string `json:"apiVersion"`
	Timezone   string `json:"timezone"`
	Storage    string `json:"storage"`
}

func (h *VersionHandler) Get(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, versionResponse{
		Service:    serviceName,
		Version:    Version,
		Commit:     Commit,
		APIVersion: apiVersion,
		Timezone:   h.timezone,
		Storage:    h.storage,
	})
}
