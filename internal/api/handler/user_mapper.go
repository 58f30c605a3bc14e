package handler

import (
	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// --- Request → Service input ---

func toUserInput(req userRequest) ports.UserInput {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return ports.UserInput{
		ID:        req.ID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Enabled:   enabled,
		Role:      req.Role,
		Gender:    req.Gender,
	}
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Enabled:   u.Enabled,
		IsDeleted: u.IsDeleted,
		Role:      roleResponse{Description: u.Role.Description},
		Gender:    string(u.Gender),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toMirrorFailureResponses(failures []domain.MirrorFailure) []mirrorFailureResponse {
	out := make([]mirrorFailureResponse, 0, len(failures))
	for _, f := range failures {
		out = append(out, mirrorFailureResponse(f))
	}
	return out
}
