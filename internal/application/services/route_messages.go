package services

// Messages for the directions provider result codes.
var routeResultMessages = map[int]string{
	1:   "No route could be found between the selected places.",
	101: "Cannot search routes because no road was found near a waypoint.",
	102: "Cannot search routes because no road was found near the origin.",
	103: "Cannot search routes because no road was found near the destination.",
	104: "Cannot search routes when origin and destination are within 5 meters.",
	105: "Cannot search routes because of a traffic incident near the origin.",
	106: "Cannot search routes because of a traffic incident near the destination.",
	107: "Cannot search routes because of a traffic incident near a waypoint.",
}

const unknownRouteResultMessage = "Something went wrong while searching for a route. Please try again."

// RouteErrorMessage maps a provider result code to a user-facing message.
func RouteErrorMessage(code int) string {
	if msg, ok := routeResultMessages[code]; ok {
		return msg
	}
	return unknownRouteResultMessage
}
