package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/spotxchange/exchange/internal/xerrors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRPCError maps an error returned by an rpcbus.Client.Call onto an
// HTTP status: 404 not-found family, 409 already-exists, 403 insufficient
// funds/cannot-cancel, 408 timeout, 400 validation, 500 everything else.
func writeRPCError(w http.ResponseWriter, err error) {
	typed, ok := err.(xerrors.Typed)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch typed.Kind() {
	case xerrors.KindUserNotFound, xerrors.KindInstrumentNotFound, xerrors.KindOrderNotFound:
		writeError(w, http.StatusNotFound, typed.Error())
	case xerrors.KindInstrumentAlreadyExist:
		writeError(w, http.StatusConflict, typed.Error())
	case xerrors.KindInsufficientFunds, xerrors.KindCannotCancel:
		writeError(w, http.StatusForbidden, typed.Error())
	case xerrors.KindRequestTimeout:
		writeError(w, http.StatusRequestTimeout, typed.Error())
	case xerrors.KindValidation:
		writeError(w, http.StatusBadRequest, typed.Error())
	default:
		writeError(w, http.StatusInternalServerError, typed.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
