package auth

import "errors"

var ErrNoClaims = errors.New("no authorizer claims")

// ClientId returns the "sub" claim that the API Gateway JWT authorizer
// attaches to the request context.
func ClientId(authorizer map[string]interface{}) (string, error) {
	jwt, ok := authorizer["jwt"].(map[string]interface{})
	if !ok {
		return "", ErrNoClaims
	}
	v, exists := jwt["claims"]
	if !exists {
		return "", ErrNoClaims
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		return "", errors.New("claims must be of type map")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("invalid sub")
	}
	return sub, nil
}
