package session

const ViewIDKey = viewIDKey
