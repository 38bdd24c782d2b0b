package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/validate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// currentUser returns the identity stored by accessTokenInterceptor.
func currentUser(ctx context.Context) (*models.User, error) {
	user, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "could not validate credentials")
	}
	return user, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*models.PublicProfile, error) {

	if err := validate.Registration(req.Username, req.Email, req.Password, req.PublicKey); err != nil {
		return nil, toStatus(err)
	}

	profile, err := s.relay.Users.Register(ctx, req.Username, req.Email, req.Password, req.PublicKey)
	if err != nil {
		if !errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Error(ctx, err.Error())
		}
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", profile.Username)
	return profile, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {

	token, err := s.relay.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "incorrect username or password")
		}
		return nil, toStatus(err)
	}

	return &LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}, nil
}

func (s *GRPCServer) GetCurrentUser(ctx context.Context, _ *Empty) (*models.PublicProfile, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	return &profile, nil
}

func (s *GRPCServer) GetPublicKey(ctx context.Context, req *PublicKeyRequest) (*PublicKeyResponse, error) {

	key, err := s.relay.Directory.LookupPublicKey(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrPublicKeyNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, toStatus(err)
	}

	return &PublicKeyResponse{PublicKey: key}, nil
}

func (s *GRPCServer) UpdatePublicKey(ctx context.Context, req *UpdatePublicKeyRequest) (*models.PublicProfile, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := validate.PublicKey(req.PublicKey); err != nil {
		return nil, toStatus(err)
	}

	profile, err := s.relay.Users.UpdatePublicKey(ctx, user, req.PublicKey)
	if err != nil {
		return nil, toStatus(err)
	}

	return profile, nil
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *SendMessageRequest) (*models.Message, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := validate.Username(req.RecipientUsername); err != nil {
		return nil, toStatus(err)
	}

	msg, err := s.relay.Messages.Send(ctx, user, req.RecipientUsername, req.EncryptedContent, req.AttachmentKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "recipient not found")
		}
		return nil, toStatus(err)
	}

	return msg, nil
}

func (s *GRPCServer) GetInbox(ctx context.Context, _ *Empty) (*InboxResponse, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	msgs, err := s.relay.Messages.Inbox(ctx, user)
	if err != nil {
		return nil, toStatus(err)
	}

	return &InboxResponse{Messages: msgs}, nil
}

func (s *GRPCServer) CreateUploadSlot(ctx context.Context, _ *Empty) (*models.UploadSlot, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	slot, err := s.relay.Attachments.NewUploadSlot(ctx, user)
	if err != nil {
		return nil, toStatus(err)
	}

	return slot, nil
}

func (s *GRPCServer) GetAttachmentURL(ctx context.Context, req *AttachmentURLRequest) (*AttachmentURLResponse, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.relay.Attachments.DownloadURL(ctx, user, req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &AttachmentURLResponse{URL: url}, nil
}
