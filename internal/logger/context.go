package logger

// Component-specific logger functions

// HTTP returns a logger for request handling
func HTTP() Logger {
	return WithField("component", "http")
}

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// Service returns a logger for list and item operations
func Service() Logger {
	return WithField("component", "todo")
}

// Migration returns a logger for schema migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}
