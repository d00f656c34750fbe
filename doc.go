// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nya turns a directory of text files into another directory of text
// files by running them through a chain of middleware.
//
//	ignore, err := nya.Ignore("drafts/**")
//	if err != nil {
//		return err
//	}
//	_, err = nya.Run(ctx, []nya.Middleware{
//		ignore,
//		frontmatter.New(),
//		markdown.New(),
//	}, nya.Options{Source: "site", Destination: "_site"})
//
// Files are read whole into memory, so nya suits small trees such as
// documentation or a personal site.
package nya
