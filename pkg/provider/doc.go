/*
Package provider turns a repository reference into a downloadable archive URL.

	  "owner/repo@ref"
	         |
	    +----+-----+        +-------------+
	    | ParseRef | -----> |  RepoRef    |
	    +----------+        +------+------+
	                               |  ForRef (by host)
	                        +------+------+
	                        |  Provider   |
	                        |  (github)   |
	                        +------+------+
	                               |  ResolveArchive
	                        +------+------+
	                        |  Archive    |
	                        |  URL + ref  |
	                        +-------------+

🎯 Purpose:
- Accept the reference forms people paste (owner/repo, URLs, /tree/<branch>)
- Find the default branch when no ref is given
- Build the archive URL for the requested format

🔄 Flow:
1. ParseRef normalises the input
2. ForRef picks the provider registered for the host
3. ResolveArchive looks up the default branch if needed and returns the URL

🤝 Interfaces:
- Provider: archive resolution for one host
- Factory: creates a provider from Options

🔍 Example:

	ref, err := provider.ParseRef("walteh/tokenalyzer@main")
	p, err := provider.ForRef(ctx, ref, provider.Options{Token: os.Getenv("GITHUB_TOKEN")})
	archive, err := p.ResolveArchive(ctx, ref, provider.FormatZip)
*/
package provider
