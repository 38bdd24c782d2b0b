package grpc

import (
	"context"

	"github.com/dmitrijs2005/securechat/internal/server/models"
	"google.golang.org/grpc"
)

const ServiceName = "securechat.SecureChat"

type Empty struct{}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password"`
	PublicKey string `json:"public_key"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type PublicKeyRequest struct {
	Username string `json:"username"`
}

type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type UpdatePublicKeyRequest struct {
	PublicKey string `json:"public_key"`
}

type SendMessageRequest struct {
	RecipientUsername string `json:"recipient_username"`
	EncryptedContent  string `json:"encrypted_content"`
	AttachmentKey     string `json:"attachment_key,omitempty"`
}

type InboxResponse struct {
	Messages []models.Message `json:"messages"`
}

type AttachmentURLRequest struct {
	MessageID int64 `json:"message_id"`
}

type AttachmentURLResponse struct {
	URL string `json:"url"`
}

// SecureChatServer is the server API of the relay service.
type SecureChatServer interface {
	Register(context.Context, *RegisterRequest) (*models.PublicProfile, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	GetCurrentUser(context.Context, *Empty) (*models.PublicProfile, error)
	GetPublicKey(context.Context, *PublicKeyRequest) (*PublicKeyResponse, error)
	UpdatePublicKey(context.Context, *UpdatePublicKeyRequest) (*models.PublicProfile, error)
	SendMessage(context.Context, *SendMessageRequest) (*models.Message, error)
	GetInbox(context.Context, *Empty) (*InboxResponse, error)
	CreateUploadSlot(context.Context, *Empty) (*models.UploadSlot, error)
	GetAttachmentURL(context.Context, *AttachmentURLRequest) (*AttachmentURLResponse, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary adapts a typed server method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(SecureChatServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SecureChatServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SecureChatServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecureChatServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SecureChatServer.Register),
		unary("Login", SecureChatServer.Login),
		unary("GetCurrentUser", SecureChatServer.GetCurrentUser),
		unary("GetPublicKey", SecureChatServer.GetPublicKey),
		unary("UpdatePublicKey", SecureChatServer.UpdatePublicKey),
		unary("SendMessage", SecureChatServer.SendMessage),
		unary("GetInbox", SecureChatServer.GetInbox),
		unary("CreateUploadSlot", SecureChatServer.CreateUploadSlot),
		unary("GetAttachmentURL", SecureChatServer.GetAttachmentURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securechat.json",
}

// RegisterSecureChatServer registers srv on s.
func RegisterSecureChatServer(s grpc.ServiceRegistrar, srv SecureChatServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Client is a typed client for the relay service. Calls made with it use
// the JSON codec automatically.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, name string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*models.PublicProfile, error) {
	return invoke[models.PublicProfile](ctx, c, "Register", in, opts...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, "Login", in, opts...)
}

func (c *Client) GetCurrentUser(ctx context.Context, opts ...grpc.CallOption) (*models.PublicProfile, error) {
	return invoke[models.PublicProfile](ctx, c, "GetCurrentUser", &Empty{}, opts...)
}

func (c *Client) GetPublicKey(ctx context.Context, in *PublicKeyRequest, opts ...grpc.CallOption) (*PublicKeyResponse, error) {
	return invoke[PublicKeyResponse](ctx, c, "GetPublicKey", in, opts...)
}

func (c *Client) UpdatePublicKey(ctx context.Context, in *UpdatePublicKeyRequest, opts ...grpc.CallOption) (*models.PublicProfile, error) {
	return invoke[models.PublicProfile](ctx, c, "UpdatePublicKey", in, opts...)
}

func (c *Client) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*models.Message, error) {
	return invoke[models.Message](ctx, c, "SendMessage", in, opts...)
}

func (c *Client) GetInbox(ctx context.Context, opts ...grpc.CallOption) (*InboxResponse, error) {
	return invoke[InboxResponse](ctx, c, "GetInbox", &Empty{}, opts...)
}

func (c *Client) CreateUploadSlot(ctx context.Context, opts ...grpc.CallOption) (*models.UploadSlot, error) {
	return invoke[models.UploadSlot](ctx, c, "CreateUploadSlot", &Empty{}, opts...)
}

func (c *Client) GetAttachmentURL(ctx context.Context, in *AttachmentURLRequest, opts ...grpc.CallOption) (*AttachmentURLResponse, error) {
	return invoke[AttachmentURLResponse](ctx, c, "GetAttachmentURL", in, opts...)
}
