package budget

import "teampulse.org/internal/directory"

func actorManager() directory.Actor {
	return directory.Actor{ID: "mgr", Role: directory.RoleManager}
}

func actorUser() directory.Actor {
	return directory.Actor{ID: "usr", Role: directory.RoleUser}
}
