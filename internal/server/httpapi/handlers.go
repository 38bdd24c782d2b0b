package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/validate"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body too large", common.ErrorValidation)
		}
		return fmt.Errorf("%w: malformed JSON body", common.ErrorValidation)
	}
	return nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (s *HTTPServer) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: "SecureChat API"})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := validate.Registration(req.Username, req.Email, req.Password, req.PublicKey); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.relay.Users.Register(r.Context(), req.Username, req.Email, req.Password, req.PublicKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", profile.Username)
	writeJSON(w, http.StatusOK, profile)
}

// login accepts an OAuth2 password form or a JSON body.
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: malformed form body", common.ErrorValidation))
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if req.Username == "" || req.Password == "" {
		s.writeError(w, r, fmt.Errorf("%w: username and password are required", common.ErrorValidation))
		return
	}

	token, err := s.relay.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	})
}

func (s *HTTPServer) currentUser(w http.ResponseWriter, r *http.Request, user *models.User) {
	writeJSON(w, http.StatusOK, user.Profile())
}

func (s *HTTPServer) publicKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.relay.Directory.LookupPublicKey(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrPublicKeyNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, key)
}

// updatePublicKey takes the key from the public_key query parameter or
// from a JSON body.
func (s *HTTPServer) updatePublicKey(w http.ResponseWriter, r *http.Request, user *models.User) {
	key := r.URL.Query().Get("public_key")
	if key == "" && isJSON(r) {
		var req publicKeyRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		key = req.PublicKey
	}

	if err := validate.PublicKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.relay.Users.UpdatePublicKey(r.Context(), user, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *HTTPServer) sendMessage(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := validate.Username(req.RecipientUsername); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.relay.Messages.Send(r.Context(), user, req.RecipientUsername, req.EncryptedContent, req.AttachmentKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, "Recipient not found")
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.logger.Debug(r.Context(), "message stored", "id", msg.ID, "recipient", msg.RecipientUsername)
	writeJSON(w, http.StatusOK, msg)
}

func (s *HTTPServer) inbox(w http.ResponseWriter, r *http.Request, user *models.User) {
	msgs, err := s.relay.Messages.Inbox(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (s *HTTPServer) newUploadSlot(w http.ResponseWriter, r *http.Request, user *models.User) {
	slot, err := s.relay.Attachments.NewUploadSlot(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (s *HTTPServer) attachmentURL(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: message id must be an integer", common.ErrorValidation))
		return
	}

	url, err := s.relay.Attachments.DownloadURL(r.Context(), user, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, attachmentURLResponse{URL: url})
}
