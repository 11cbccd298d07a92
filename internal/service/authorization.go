package service

import "github.com/Freeeeeet/alumni_connect/internal/model"

// CanResolve: менять статус может только назначенный отвечающий
// (получатель связи, выпускник в заявке на менторство)
func CanResolve(r model.Relationship, actorID int64) bool {
	return r.ResponderID() == actorID
}

// CanView: видеть запись могут её стороны и администратор
func CanView(r model.Relationship, actor *model.User) bool {
	switch actor.Profile.(type) {
	case model.AdminProfile:
		return true
	case model.StudentProfile, model.AlumniProfile:
		return model.HasParty(r, actor.ID)
	default:
		return false
	}
}

// RequireRole возвращает model.ErrForbidden, если роль пользователя не из списка
func RequireRole(actor *model.User, roles ...model.Role) error {
	var role model.Role
	switch actor.Profile.(type) {
	case model.StudentProfile:
		role = model.RoleStudent
	case model.AlumniProfile:
		role = model.RoleAlumni
	case model.AdminProfile:
		role = model.RoleAdmin
	default:
		return model.ErrForbidden
	}

	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return model.ErrForbidden
}
