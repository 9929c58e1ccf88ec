// Package remotev1 defines the remotebean wire protocol.
//
// Both services are Connect unary procedures. Messages are plain Go
// structs encoded with the JSON codec in this package, so clients and
// handlers must both be built with connect.WithCodec(remotev1.Codec()).
//
// Failed calls return a connect.Error whose metadata carries the domain
// error code under ErrorCodeHeader.
package remotev1
